package api

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// NewRouter builds the engine with middleware and all routes.
func NewRouter(h *Handler, limiter *IPRateLimiter, outputDir string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))
	r.MaxMultipartMemory = h.maxUpload
	RegisterRoutes(r, h, limiter, outputDir)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler, limiter *IPRateLimiter, outputDir string) {
	r.SetHTMLTemplate(templates)

	r.GET("/", h.badgeForm)
	r.POST("/", limiter.RateLimit(), h.submitBadge)
	r.Static("/output", outputDir)

	api := r.Group("/api")
	{
		api.GET("/health", health)
	}
}
