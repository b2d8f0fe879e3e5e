package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MarcosViniB/PagSync/internal/pkg/cache"
	"github.com/MarcosViniB/PagSync/internal/pkg/database"
)

// HandleHealth reports process liveness plus dependency reachability. A
// degraded dependency still answers 200 so orchestrators do not restart the
// process for a database blip; the body carries the detail.
func HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "unreachable"
		}
	} else {
		dbStatus = "not_initialized"
	}

	cacheStatus := "ok"
	if client := cache.GetClient(); client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			cacheStatus = "unreachable"
		}
	} else {
		cacheStatus = "not_initialized"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "up",
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
