package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MarcosViniB/PagSync/app/controllers"
	"github.com/MarcosViniB/PagSync/app/repository"
	"github.com/MarcosViniB/PagSync/internal/pkg/asaas"
	"github.com/MarcosViniB/PagSync/internal/pkg/billing"
	"github.com/MarcosViniB/PagSync/internal/pkg/cache"
	"github.com/MarcosViniB/PagSync/internal/pkg/database"
	"github.com/MarcosViniB/PagSync/internal/pkg/env"
	"github.com/MarcosViniB/PagSync/internal/pkg/jobqueue"
	"github.com/MarcosViniB/PagSync/internal/pkg/router"
)

func main() {
	app, manager := NewApplication()

	manager.Start()
	defer manager.Stop()

	// Shut down cleanly on SIGINT/SIGTERM so in-flight jobs finish.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		manager.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// Wire the dependency graph: repositories -> billing service -> queue,
	// reconciler and controllers. Everything downstream takes its
	// collaborators through constructors.
	repos := repository.NewFactory(database.GetDB()).GetRepositories()
	svc := billing.NewService(repos)

	providerClient := asaas.NewClientFromEnv()
	reconciler := billing.NewReconciler(svc, providerClient)

	queue := jobqueue.NewQueue(jobqueue.WorkerCountFromEnv(), svc)
	manager := jobqueue.NewManager(queue, repos.Events)

	webhookController := controllers.NewWebhookController(svc, queue)
	adminController := controllers.NewAdminController(svc, reconciler, queue)

	// Find the project root for the OpenAPI file
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/pagsync to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:   "PagSync",
		BodyLimit: 1048576, // 1 MiB, webhook payloads are small
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, router.NewApiRouter(webhookController, adminController))

	return app, manager
}
