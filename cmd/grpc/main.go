package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rna/infra/grpc"
	"rna/infra/postgres"
	"rna/pkg/catalog"
	"rna/pkg/config"
	"rna/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	appConfig := config.Read()
	log := logger.Init(appConfig.ServiceName+"-grpc", appConfig.LogLevel)
	defer log.Sync()

	zap.L().Info("RNA gRPC Service starting...")

	cat, err := catalog.FromDir(appConfig.CatalogDir)
	if err != nil {
		zap.L().Fatal("Failed to load catalog", zap.Error(err))
	}

	pgRepository, err := postgres.NewPgRepository(appConfig.PostgresDSN())
	if err != nil {
		zap.L().Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer pgRepository.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = pgRepository.Migrate(ctx)
	cancel()
	if err != nil {
		zap.L().Fatal("Failed to migrate", zap.Error(err))
	}

	grpcServer, err := grpc.NewServer(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to create grpc server", zap.Error(err))
	}
	grpcServer.RegisterProgressService(grpc.NewProgressService(pgRepository, cat))

	zap.L().Info("Starting gRPC server...", zap.String("port", appConfig.GRPCPort))
	go func() {
		if err := grpcServer.Start(); err != nil {
			zap.L().Error("Failed to start grpc server", zap.Error(err))
			os.Exit(1)
		}
	}()

	gracefulShutdown(grpcServer)
}

func gracefulShutdown(grpcServer *grpc.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	grpcServer.GracefulStop()

	zap.L().Info("Server gracefully stopped")
}
