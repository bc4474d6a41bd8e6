package main

import (
	"time"

	"rna/app"
	"rna/internal/middleware"
	"rna/pkg/catalog"
	"rna/pkg/events"
	"rna/pkg/severity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type dependencies struct {
	repository app.Repository
	catalog    *catalog.Catalog
	store      app.PackageStore
	publisher  events.Publisher
	corsOrigin string
}

func newApp(deps dependencies) *fiber.App {
	server := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
		ErrorHandler: writeError,
	})

	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: deps.corsOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, User-ID, User-Email",
	}))

	getCatalogHandler := app.NewGetCatalogHandler(deps.catalog)
	getRnasHandler := app.NewGetRnasHandler(deps.repository)
	getRnaHandler := app.NewGetRnaHandler(deps.repository)
	createRnaHandler := app.NewCreateRnaHandler(deps.repository)
	getRnaAnswersHandler := app.NewGetRnaAnswersHandler(deps.repository)
	createAnswerHandler := app.NewCreateAnswerHandler(deps.repository, deps.catalog, deps.publisher)
	getCategoriesHandler := app.NewGetCategoriesHandler(deps.repository, deps.catalog)
	getCategoryHandler := app.NewGetCategoryHandler(deps.repository, deps.catalog)
	getProgressHandler := app.NewGetProgressHandler(deps.repository, deps.catalog)
	downloadRnaHandler := app.NewDownloadRnaHandler(deps.repository, deps.catalog, deps.store, deps.publisher)
	synchronizeHandler := app.NewSynchronizeHandler(deps.repository, deps.catalog, deps.store, deps.publisher)
	getSeverityHandler := app.NewGetSeverityHandler(deps.repository, deps.catalog, severity.NewScorer())

	v1 := server.Group("/api/v1")
	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthStatus(deps.publisher))
	})
	v1.Get("/catalog", handle[app.GetCatalogRequest, app.GetCatalogResponse](getCatalogHandler))
	v1.Get("/rnas", handle[app.GetRnasRequest, app.GetRnasResponse](getRnasHandler))
	v1.Get("/rnas/severity", handle[app.GetSeverityRequest, app.GetSeverityResponse](getSeverityHandler))
	v1.Get("/rnas/:id", handle[app.GetRnaRequest, app.GetRnaResponse](getRnaHandler))
	v1.Get("/rnas/:id/answers", handle[app.GetRnaAnswersRequest, app.GetRnaAnswersResponse](getRnaAnswersHandler))
	v1.Get("/rnas/:id/categories", handle[app.GetCategoriesRequest, app.GetCategoriesResponse](getCategoriesHandler))
	v1.Get("/rnas/:id/categories/:categoryId", handle[app.GetCategoryRequest, app.GetCategoryResponse](getCategoryHandler))
	v1.Get("/rnas/:id/progress", handle[app.GetProgressRequest, app.GetProgressResponse](getProgressHandler))

	secured := middleware.NewSecurityHeadersMiddleware()
	v1.Post("/rnas", secured, handle[app.CreateRnaRequest, app.CreateRnaResponse](createRnaHandler))
	v1.Post("/rnas/:id/answers", secured, handle[app.CreateAnswerRequest, app.CreateAnswerResponse](createAnswerHandler))
	v1.Post("/rnas/:id/download", secured, handle[app.DownloadRnaRequest, app.DownloadRnaResponse](downloadRnaHandler))
	v1.Post("/synchronization", secured, handle[app.SynchronizeRequest, app.SynchronizeResponse](synchronizeHandler))

	return server
}

type healthChecker interface {
	IsHealthy() bool
}

// healthStatus reports the broker only when one is configured. A broken
// broker does not fail the check since events are best effort.
func healthStatus(publisher events.Publisher) fiber.Map {
	status := fiber.Map{"status": "ok"}

	if checker, ok := publisher.(healthChecker); ok {
		status["broker"] = "down"
		if checker.IsHealthy() {
			status["broker"] = "up"
		}
	}

	return status
}
