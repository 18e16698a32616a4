package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/infra"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the settlements waiting for
// a human: dead-lettered appends and unverified external writes.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlq, unverified int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlq, _ = worker.DeadSettlements(ctx, rdb)
			unverified, _ = rdb.SCard(ctx, infra.UnverifiedOrdersKey).Result()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":                     status == http.StatusOK,
			"db":                     dbStatus,
			"redis":                  redisStatus,
			"dlq_reconciliation":     dlq,
			"unverified_settlements": unverified,
		})
	}
}
