// Worker drains the security event topic and ships each event to Loki so
// reuse detections and forced logouts show up in the operators' log store.
// Requires KAFKA_BROKERS and LOKI_URL; topic and group default per config.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"submitiq/backend/internal/config"
	"submitiq/backend/internal/telemetry/loki"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	brokers := cfg.KafkaBrokersList()
	switch {
	case len(brokers) == 0:
		log.Fatal("KAFKA_BROKERS is required")
	case cfg.LokiURL == "":
		log.Fatal("LOKI_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	log.WithFields(logrus.Fields{
		"topic": cfg.KafkaTopic,
		"group": cfg.KafkaGroupID,
		"loki":  cfg.LokiURL,
	}).Info("event worker started")

	if err := consume(ctx, reader, loki.NewClient(cfg.LokiURL), log); err != nil {
		log.WithError(err).Fatal("event worker stopped")
	}
	log.Info("event worker stopped")
}

func consume(ctx context.Context, reader *kafka.Reader, sink *loki.Client, log *logrus.Logger) error {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = sink.PushEventJSON(pushCtx, msg.Value)
		cancel()
		if err != nil {
			// Message is already committed; an unreachable Loki costs us
			// the event, not the worker.
			log.WithError(err).Warn("loki push failed")
		}
	}
}
