package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/MarcosViniB/PagSync/app/controllers"
	"github.com/MarcosViniB/PagSync/internal/pkg/cache"
	"github.com/MarcosViniB/PagSync/internal/pkg/constants"
	"github.com/MarcosViniB/PagSync/internal/pkg/env"
	"github.com/MarcosViniB/PagSync/internal/pkg/middleware"
)

type ApiRouter struct {
	webhook *controllers.WebhookController
	admin   *controllers.AdminController
}

func NewApiRouter(webhook *controllers.WebhookController, admin *controllers.AdminController) *ApiRouter {
	return &ApiRouter{webhook: webhook, admin: admin}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, controllers.HandleHealth)

	// Webhook ingestion gets a generous rate limit; the provider retries
	// aggressively and a 429 just delays convergence.
	app.Post(constants.WebhookRoute, limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
	}), h.webhook.HandleProviderWebhook)

	adminKey := middleware.AdminKeyMiddleware()
	app.Post(constants.RetryRoute, adminKey, h.admin.HandleRetry)
	app.Post(constants.ReconciliationRoute, adminKey, h.admin.HandleReconciliation)
	app.Get(constants.QueueStatsRoute, adminKey, h.admin.HandleQueueStats)
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Uses database 1, the job queue owns database 0.
func newLimiterStorage() *redisstorage.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}
