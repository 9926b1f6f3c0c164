package httpapi

import (
	"context"
	"net/http"
	"time"

	"artifact-cache/internal/auth"
	"artifact-cache/pkg/logger"
	"artifact-cache/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// uploadSlotTTL bounds how long a crashed replica can hold an upload slot.
const uploadSlotTTL = 5 * time.Minute

// UploadCap limits in-flight artifact writes per organization across gateway
// replicas. The slot counter lives in Redis so the cap holds fleet-wide.
//
// The cap is admission control, not correctness: if Redis is unreachable the
// middleware fails open and the write proceeds uncapped.
func UploadCap(rdb *redis.Client, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := auth.Organization(c.Request.Context())
		if err != nil || org == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization required"})
			return
		}

		key := "upload_cap:" + org
		ok, err := utils.AcquireConcurrencyCap(c.Request.Context(), rdb, key, limit, uploadSlotTTL)
		if err != nil {
			logger.FromGin(c).Warn("upload cap unavailable, failing open", "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many concurrent uploads"})
			return
		}
		defer func() {
			// Release on a fresh context: the request context may already
			// be canceled by a client disconnect.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := utils.ReleaseConcurrencyCap(releaseCtx, rdb, key); err != nil {
				logger.FromGin(c).Warn("upload cap release failed", "err", err)
			}
		}()

		c.Next()
	}
}
