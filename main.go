package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/expense-server/api"
	"github.com/carson-networks/expense-server/internal/audit"
	"github.com/carson-networks/expense-server/internal/auth"
	"github.com/carson-networks/expense-server/internal/config"
	"github.com/carson-networks/expense-server/internal/logging"
	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/storage"
	"github.com/carson-networks/expense-server/internal/storage/memory"
	"github.com/carson-networks/expense-server/internal/storage/postgres"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.Info("expense-server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, envConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("openStorage")
		return
	}
	defer store.Close()

	sinks := audit.Multi{audit.NewLogSink(logger)}
	if envConfig.AMQPURL != "" {
		publisher, err := audit.NewPublisher(envConfig.AMQPURL, envConfig.AMQPExchange, envConfig.AMQPRoutingKey)
		if err != nil {
			logger.WithError(err).Fatal("audit.NewPublisher")
			return
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	tokens := auth.NewTokens(envConfig.JWTSecret, envConfig.TokenTTL)
	svc := service.NewService(store, sinks, tokens, logger)

	httpRest := api.Rest{
		Logger:         logger,
		Port:           envConfig.Port,
		Service:        svc,
		Storage:        store,
		Tokens:         tokens,
		RequireAuth:    envConfig.RequireAuth,
		AllowedOrigins: envConfig.CORSAllowedOrigins,
	}

	if err := httpRest.Serve(ctx); err != nil {
		logger.WithError(err).Error("expense-server stopped")
		return
	}
	logger.Info("expense-server stopped")
}

func openStorage(ctx context.Context, envConfig *config.Config, logger *logrus.Logger) (storage.Storage, error) {
	if envConfig.StoreBackend == config.BackendMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}

	dsn := envConfig.PostgresDSN()
	if envConfig.PostgresAutoMigrate {
		result, err := postgres.Migrate(dsn)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"preMigrationVersion":  result.PreVersion,
			"postMigrationVersion": result.PostVersion,
		}).Info("Migration status")
	}

	return postgres.Open(ctx, dsn, postgres.Options{
		MaxOpenConns:    envConfig.PostgresMaxOpenConns,
		MaxIdleConns:    envConfig.PostgresMaxIdleConns,
		ConnMaxLifetime: envConfig.PostgresConnMaxLifetime,
	})
}
