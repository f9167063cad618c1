package blacklist

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Pruner runs Store.Prune on a cron schedule so expired entries do not pile up.
type Pruner struct {
	store Store
	log   *logrus.Logger
	cron  *cron.Cron
}

// NewPruner returns a Pruner for the given store.
func NewPruner(store Store, log *logrus.Logger) *Pruner {
	return &Pruner{store: store, log: log, cron: cron.New()}
}

// Start schedules pruning with the given cron spec (e.g. "*/10 * * * *") and
// starts the scheduler. Call Stop on shutdown.
func (p *Pruner) Start(schedule string) error {
	_, err := p.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := p.store.Prune(ctx, time.Now().UTC())
		if err != nil {
			p.log.WithError(err).Warn("blacklist prune failed")
			return
		}
		if n > 0 {
			p.log.WithField("removed", n).Info("blacklist pruned")
		}
	})
	if err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running prune to finish.
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}
