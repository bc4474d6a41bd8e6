package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rna/infra/postgres"
	"rna/infra/rabbitmq"
	"rna/internal/consumers"
	"rna/pkg/catalog"
	"rna/pkg/config"
	"rna/pkg/events"
	"rna/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	appConfig := config.Read()
	log := logger.Init(appConfig.ServiceName+"-worker", appConfig.LogLevel)
	defer log.Sync()

	zap.L().Info("RNA Worker Service starting...",
		zap.Int("workerPoolSize", appConfig.WorkerPoolSize),
	)

	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for worker service")
	}

	cat, err := catalog.FromDir(appConfig.CatalogDir)
	if err != nil {
		zap.L().Fatal("Failed to load catalog", zap.Error(err))
	}

	pgRepository, err := postgres.NewPgRepository(appConfig.PostgresDSN())
	if err != nil {
		zap.L().Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer pgRepository.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pgRepository.Migrate(ctx); err != nil {
		zap.L().Fatal("Failed to migrate", zap.Error(err))
	}

	answerHandler := consumers.NewAnswerEventHandler(pgRepository, cat)

	// Queue name: {service}.{domain}.{events}.{version}
	answerConsumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
		Exchange:       events.AnswerExchange,
		QueueName:      "rna.answer.recorded.v1",
		RoutingKeys:    []string{events.AnswerRecordedEvent + "." + events.EventVersionV1},
		ServiceName:    appConfig.ServiceName,
		PrefetchCount:  appConfig.WorkerPoolSize,
		WorkerPoolSize: appConfig.WorkerPoolSize,
	})
	if err != nil {
		zap.L().Fatal("Failed to create answer consumer", zap.Error(err))
	}
	defer answerConsumer.Close()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := answerConsumer.Consume(ctx, answerHandler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			zap.L().Error("Answer consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	go monitorPool(ctx, pgRepository)

	zap.L().Info("Worker service started. Waiting for events...",
		zap.String("exchange", events.AnswerExchange),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, stopping worker service...")
	case <-ctx.Done():
	}
	cancel()
	<-consumerDone

	zap.L().Info("Worker service stopped")
}

func monitorPool(ctx context.Context, pgRepository *postgres.PgRepository) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := pgRepository.GetPoolStats()
			zap.L().Info("Connection pool stats",
				zap.Int("max_open", stats["max_open_connections"].(int)),
				zap.Int("open", stats["open_connections"].(int)),
				zap.Int("in_use", stats["in_use"].(int)),
				zap.Int("idle", stats["idle"].(int)),
				zap.Int64("wait_count", stats["wait_count"].(int64)),
				zap.Int64("wait_duration_ms", stats["wait_duration_ms"].(int64)),
			)
		}
	}
}
