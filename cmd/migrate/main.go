// migrate applies the embedded schema migrations against DATABASE_URL.
package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"submitiq/backend/internal/config"
	"submitiq/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	log.WithField("direction", *direction).Info("migrations applied")
}
