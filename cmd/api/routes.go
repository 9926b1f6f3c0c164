package main

import (
	"artifact-cache/internal/config"
	"artifact-cache/internal/httpapi"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to
// internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, rdb *redis.Client, limits config.LimitsConfig) {
	// public
	r.GET("/healthz", h.Healthz)
	r.POST("/auth/login", h.Login)

	// Store routes require a verified access token. The original API surface
	// left these open; the gateway closes that gap by construction.
	st := r.Group("/store")
	st.Use(authMW)
	{
		st.GET("/exists", h.Exists)
		st.GET("/read", h.Read)

		writeHandlers := []gin.HandlerFunc{}
		if rdb != nil && limits.UploadConcurrency > 0 {
			writeHandlers = append(writeHandlers, httpapi.UploadCap(rdb, limits.UploadConcurrency))
		}
		writeHandlers = append(writeHandlers, h.Write)
		st.PUT("/write", writeHandlers...)
	}
}
