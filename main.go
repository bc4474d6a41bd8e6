package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rna/app"
	"rna/infra/memory"
	"rna/infra/postgres"
	"rna/infra/rabbitmq"
	"rna/pkg/aws"
	"rna/pkg/catalog"
	"rna/pkg/config"
	"rna/pkg/events"
	"rna/pkg/httperror"
	"rna/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ReqHeaderParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_headers",
				"Invalid headers",
				fiber.Map{"error": err.Error()},
			))
		}

		res, err := handler.Handle(c.UserContext(), &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func main() {
	appConfig := config.Read()
	log := logger.Init(appConfig.ServiceName, appConfig.LogLevel)
	defer log.Sync()

	zap.L().Info("RNA API starting...",
		zap.String("port", appConfig.Port),
		zap.String("catalogDir", appConfig.CatalogDir),
	)

	cat, err := loadCatalog(appConfig.CatalogDir)
	if err != nil {
		zap.L().Fatal("Failed to load catalog", zap.Error(err))
	}

	repository, err := openRepository(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to open repository", zap.Error(err))
	}
	defer repository.Close()

	store := aws.NewS3Bucket(appConfig)
	defer store.Close()

	var publisher events.Publisher
	if appConfig.RabbitMQURL != "" {
		rabbitPublisher, err := rabbitmq.NewPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
		if err != nil {
			zap.L().Fatal("Failed to connect publisher", zap.Error(err))
		}
		if err := rabbitPublisher.DeclareExchanges(events.AnswerExchange, events.RnaExchange); err != nil {
			zap.L().Fatal("Failed to declare exchanges", zap.Error(err))
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
	} else {
		zap.L().Warn("RABBITMQ_URL is not set, events will not be published")
	}

	server := newApp(dependencies{
		repository: repository,
		catalog:    cat,
		store:      store,
		publisher:  publisher,
		corsOrigin: appConfig.CORSOrigin,
	})

	go func() {
		if err := server.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(server)
}

// loadCatalog reports integrity issues but keeps serving; the aggregator
// drops orphaned entries on its own.
func loadCatalog(dir string) (*catalog.Catalog, error) {
	cat, err := catalog.FromDir(dir)
	if err != nil {
		return nil, err
	}

	for _, issue := range cat.Validate() {
		zap.L().Warn("Catalog integrity issue", zap.String("issue", issue.String()))
	}

	zap.L().Info("Catalog loaded",
		zap.Int("categories", len(cat.Categories)),
		zap.Int("subCategories", len(cat.SubCategories)),
		zap.Int("questions", len(cat.Questions)),
	)

	return cat, nil
}

func openRepository(appConfig *config.AppConfig) (app.Repository, error) {
	if appConfig.PostgresDatabase == "" {
		zap.L().Warn("POSTGRES_DATABASE is not set, using the in-memory repository")
		return memory.NewRepository(), nil
	}

	pgRepository, err := postgres.NewPgRepository(appConfig.PostgresDSN())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pgRepository.Migrate(ctx); err != nil {
		pgRepository.Close()
		return nil, err
	}

	return pgRepository, nil
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
