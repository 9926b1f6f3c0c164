package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"artifact-cache/internal/auth"
	"artifact-cache/internal/identity"
	"artifact-cache/internal/store"
	"artifact-cache/internal/usage"
	"artifact-cache/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON
// or artifact bytes. Error-to-status mapping happens here and nowhere else.
type Handlers struct {
	Auth     *auth.Manager
	Verifier identity.Verifier
	Store    store.Store
	Usage    *usage.Service
}

// --- Auth ---

type loginRequest struct {
	Organization string `json:"organization"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

// Login verifies credentials and issues a token pair.
// The refresh token is issued but no renewal route consumes it yet.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Verifier == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Verifier.VerifyCredentials(c.Request.Context(), req.Organization, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidInput):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "organization, email, password required"})
		case errors.Is(err, identity.ErrInvalidCredentials):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "account store unavailable"})
		}
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), req.Organization, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "organization, email, password required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authToken": pair.AccessToken, "refreshToken": pair.RefreshToken})
}

// --- Store ---

// Exists reports whether an artifact is cached. A path outside the store
// root reads as absent, same as a missing artifact.
func (h Handlers) Exists(c *gin.Context) {
	path, ok := h.artifactPath(c)
	if !ok {
		return
	}

	found, err := h.Store.Exists(c.Request.Context(), path)
	if err != nil {
		h.storeError(c, err)
		return
	}

	h.record(c, usage.OpExists, path, 0)

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
		return
	}
	c.Status(http.StatusOK)
}

// Read streams an artifact to the caller.
func (h Handlers) Read(c *gin.Context) {
	path, ok := h.artifactPath(c)
	if !ok {
		return
	}

	// gin defers the status line until the first body write, so the error
	// mapping below can still rewrite it as long as nothing was streamed.
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	cw := &countingWriter{w: c.Writer}
	if err := h.Store.Read(c.Request.Context(), path, cw); err != nil {
		if cw.n == 0 {
			h.storeError(c, err)
			return
		}
		// Headers are gone; the best we can do is cut the stream so the
		// client sees a short read instead of a clean EOF.
		logger.FromGin(c).Error("artifact stream aborted", "path", path, "err", err)
		c.Abort()
		return
	}

	h.record(c, usage.OpRead, path, cw.n)
}

// Write stores the request body as the artifact at path. The store's atomic
// rename means a concurrent reader never sees this upload half-applied.
func (h Handlers) Write(c *gin.Context) {
	path, ok := h.artifactPath(c)
	if !ok {
		return
	}

	// Count as we stream; Content-Length is -1 for chunked uploads.
	cr := &countingReader{r: c.Request.Body}
	if err := h.Store.Write(c.Request.Context(), path, cr); err != nil {
		h.storeError(c, err)
		return
	}

	h.record(c, usage.OpWrite, path, cr.n)
	c.Status(http.StatusNoContent)
}

// Healthz reports process liveness and store reachability.
func (h Handlers) Healthz(c *gin.Context) {
	if h.Store != nil {
		if err := h.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- helpers ---

func (h Handlers) artifactPath(c *gin.Context) (string, bool) {
	if h.Store == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "store not configured"})
		return "", false
	}
	path := c.Query("path")
	if path == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "path required"})
		return "", false
	}
	return path, true
}

func (h Handlers) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
	case errors.Is(err, store.ErrInvalidPath):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
	case errors.Is(err, store.ErrUnsupported):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "store type unsupported"})
	case errors.Is(err, store.ErrUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		logger.FromGin(c).Error("store operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// record appends a usage event; failures are logged, never surfaced.
func (h Handlers) record(c *gin.Context, op usage.Op, path string, bytes int64) {
	if h.Usage == nil {
		return
	}
	org, err := auth.Organization(c.Request.Context())
	if err != nil {
		return
	}
	email, _ := auth.Email(c.Request.Context())
	if err := h.Usage.Append(c.Request.Context(), usage.Event{
		Organization: org,
		Op:           op,
		Path:         path,
		Bytes:        bytes,
		ActorEmail:   email,
	}); err != nil {
		logger.FromGin(c).Warn("usage record failed", "op", string(op), "err", err)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
