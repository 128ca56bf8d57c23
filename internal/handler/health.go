package handler

import (
	"context"
	"net/http"
	"time"

	"floreria/internal/infra"
	"floreria/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports DB and Redis connectivity plus the state of the mail
// pipeline. Any nil dependency is reported as "disabled" and does not fail
// the check. Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "disabled"
		if db != nil {
			dbStatus = "connected"
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				dbStatus = "error"
			}
		}

		redisStatus := "disabled"
		var dlq int64
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else {
				dlq, _ = worker.DLQLength(ctx, rdb, worker.QueueEmail)
			}
		}

		smtp := "disabled"
		var smtpRetryAt *time.Time
		if mailCB != nil {
			st := mailCB.Status()
			smtp = st.State.String()
			if !st.RetryAt.IsZero() {
				smtpRetryAt = &st.RetryAt
			}
		}

		status := http.StatusOK
		if dbStatus == "error" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":        status == http.StatusOK,
			"db":        dbStatus,
			"redis":     redisStatus,
			"smtp":      smtp,
			"email_dlq": dlq,
		}
		if smtpRetryAt != nil {
			body["smtp_retry_at"] = smtpRetryAt.UTC().Format(time.RFC3339)
		}
		c.JSON(status, body)
	}
}
