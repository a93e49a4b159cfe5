package main

import (
	"github.com/sirupsen/logrus"

	server_config "github.com/carson-networks/expense-server/internal/config"
	"github.com/carson-networks/expense-server/internal/storage/postgres"
)

func main() {
	env, err := server_config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}

	result, err := postgres.Migrate(env.PostgresDSN())
	if err != nil {
		logrus.WithError(err).Fatal("postgres.Migrate")
		return
	}

	logrus.WithFields(logrus.Fields{
		"preMigrationVersion":  result.PreVersion,
		"postMigrationVersion": result.PostVersion,
	}).Info("Migration status")
}
