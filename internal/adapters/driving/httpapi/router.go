// Package httpapi provides the HTTP interface: a Gin router, request
// middleware, and handlers translating between the wire format and the core
// service interfaces.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
	"github.com/custodia-labs/teamhub/internal/logger"
)

// Options tunes the router's middleware. The zero value disables rate
// limiting and allows any origin.
type Options struct {
	// AllowedOrigins restricts CORS. Empty allows any origin.
	AllowedOrigins []string

	// RateLimitRPS enables per-client rate limiting when positive.
	RateLimitRPS float64

	// RateLimitBurst caps the token bucket. Defaults to RateLimitRPS
	// rounded up when zero.
	RateLimitBurst int
}

// Router wires handlers and middleware onto a Gin engine.
type Router struct {
	engine *gin.Engine

	authService driving.AuthService
	auth        *AuthHandler
	docs        *DocsHandler
	search      *SearchHandler
	qa          *QAHandler

	opts Options
}

// NewRouter builds the router. Routes are registered immediately.
func NewRouter(
	auth driving.AuthService,
	docs driving.DocumentService,
	search driving.SearchService,
	qa driving.QAService,
	opts Options,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:      engine,
		authService: auth,
		auth:        NewAuthHandler(auth),
		docs:        NewDocsHandler(docs),
		search:      NewSearchHandler(search),
		qa:          NewQAHandler(qa),
		opts:        opts,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.Use(requestLog())
	r.engine.Use(recoverPanic())
	r.engine.Use(cors(r.opts.AllowedOrigins))

	if r.opts.RateLimitRPS > 0 {
		burst := r.opts.RateLimitBurst
		if burst <= 0 {
			burst = int(r.opts.RateLimitRPS) + 1
		}
		r.engine.Use(newRateLimiter(r.opts.RateLimitRPS, burst).middleware())
	}

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "teamhub"})
	})

	r.engine.POST("/api/auth/register", r.auth.Register)
	r.engine.POST("/api/auth/login", r.auth.Login)

	authorized := r.engine.Group("/api")
	authorized.Use(requireAuth(r.authService))
	{
		authorized.POST("/docs", r.docs.Create)
		authorized.GET("/docs", r.docs.List)
		authorized.GET("/docs/activity/feed/latest", r.docs.Activity)
		authorized.GET("/docs/:id", r.docs.Get)
		authorized.PUT("/docs/:id", r.docs.Update)
		authorized.DELETE("/docs/:id", r.docs.Delete)
		authorized.POST("/docs/:id/summarize", r.docs.Summarize)
		authorized.POST("/docs/:id/tags", r.docs.Tags)
		authorized.GET("/docs/:id/versions", r.docs.Versions)

		authorized.GET("/search/text", r.search.Text)
		authorized.GET("/search/semantic", r.search.Semantic)

		authorized.POST("/qa", r.qa.Ask)
	}
}

// Engine exposes the underlying Gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server on addr and blocks.
func (r *Router) Run(addr string) error {
	logger.Info("starting http server", "address", addr)
	return r.engine.Run(addr)
}
