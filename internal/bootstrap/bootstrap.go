package bootstrap

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/darregistry/member-registry/go-api-server/internal/config"
	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/middleware"
	"github.com/gin-gonic/gin"
)

// Bootstrap builds the gin engine and its middleware chain
type Bootstrap struct {
	cfg *config.Config
}

// NewBootstrap creates a new bootstrap instance
func NewBootstrap(cfg *config.Config) *Bootstrap {
	return &Bootstrap{
		cfg: cfg,
	}
}

// SetupEngine creates and configures a gin engine with common middleware
func (b *Bootstrap) SetupEngine() *gin.Engine {
	switch {
	case b.cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case b.cfg.App.Env == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// Disable Gin's default logger (using slog)
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard

	// Create engine without default middleware
	engine := gin.New()

	// Essential middleware
	engine.Use(gin.CustomRecovery(b.recoveryHandler))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(b.cfg))
	engine.Use(middleware.Timeout(b.cfg.Server.RequestTimeout))
	engine.Use(middleware.LoggerMiddleware())

	// Unknown paths and methods answer in the shared error shape
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(sharedError.RouteNotFound.Status, sharedError.RouteNotFound)
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(sharedError.MethodNotAllowed.Status, sharedError.MethodNotAllowed)
	})

	// Health, metrics and API routes are registered by router.Setup
	return engine
}

// recoveryHandler handles panics
func (b *Bootstrap) recoveryHandler(c *gin.Context, recovered interface{}) {
	slog.Error("Panic recovered",
		"error", fmt.Sprint(recovered),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", middleware.GetRequestID(c),
	)
	c.AbortWithStatusJSON(sharedError.InternalServerError.Status, sharedError.InternalServerError)
}
