package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/travel-ease/internal/transport/http/handler"
	"github.com/ErlanBelekov/travel-ease/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// multipartOverhead is allowed on top of MaxUploadBytes for the multipart
// boundaries and part headers around the image.
const multipartOverhead = 64 << 10

type RouterConfig struct {
	CORSOrigin     string
	MaxUploadBytes int64
	UploadDir      string // served at /uploads when non-empty
	AssetsDir      string // served at /assets when non-empty
}

type Handlers struct {
	Auth  *handler.AuthHandler
	Plan  *handler.PlanHandler
	Image *handler.ImageHandler
}

func NewRouter(logger *slog.Logger, cfg RouterConfig, h Handlers, verifier middleware.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Multipart parts beyond this stay on disk rather than in memory.
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	// Public routes
	r.POST("/create-account", h.Auth.CreateAccount)
	r.POST("/login", h.Auth.Login)
	r.POST("/image-upload", middleware.BodyLimit(cfg.MaxUploadBytes+multipartOverhead), h.Image.Upload)
	r.DELETE("/delete-image", h.Image.Delete)

	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}
	if cfg.AssetsDir != "" {
		r.Static("/assets", cfg.AssetsDir)
	}

	// Protected routes
	authed := r.Group("", middleware.Auth(verifier))
	authed.GET("/get-user", h.Auth.GetUser)
	authed.POST("/add-travel-plan", h.Plan.Create)
	authed.GET("/get-all-plans", h.Plan.List)
	authed.PUT("/edit-plan/:id", h.Plan.Edit)
	authed.DELETE("/delete-plan/:id", h.Plan.Delete)
	authed.PUT("/update-is-favorite/:id", h.Plan.SetFavorite)
	authed.GET("/search", h.Plan.Search)
	authed.GET("/travel-plans/filter", h.Plan.FilterByDate)

	return r
}
