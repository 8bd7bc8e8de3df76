package handler

import (
	"context"
	"net/http"
	"time"

	"recipebox/internal/infra"
	"recipebox/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// imageCB may be nil when uploads are disabled.
func Health(db *gorm.DB, rdb *redis.Client, imageCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if redisStatus == "connected" {
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueNutritionRefresh); err == nil {
				body["dlq_nutrition_refresh"] = n
			}
		}
		if imageCB != nil {
			// an open breaker degrades uploads only; not a failed health check
			body["image_store"] = imageCB.State().String()
		}
		c.JSON(status, body)
	}
}
