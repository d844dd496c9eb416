package router

import (
	"context"
	"fmt"

	"Go_Share/internal/handler"
	"Go_Share/internal/logger"
	"Go_Share/internal/metrics"
	"Go_Share/utils"
	"Go_Share/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRouter builds the page and API routes.
func InitRouter(h *handler.Handler, db handler.Pinger, log *zap.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(logger.GinLogger(log), logger.GinRecovery(log))
	r.Use(utils.CORSMiddleware())
	r.Use(metrics.Middleware())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	doc, err := web.OpenAPI(context.Background())
	if err != nil {
		return nil, err
	}

	r.GET("/", h.IndexPage)
	r.POST("/", h.UploadPage)
	r.GET("/get", h.StatsFormPage)
	r.POST("/get", h.StatsPage)

	api := r.Group("/api")
	{
		api.POST("/upload", h.UploadAPI)
		api.GET("/stats", h.StatsAPI)
		api.POST("/stats", h.StatsAPI)
		api.GET("/all", h.CountAPI)
		api.POST("/all", h.CountAPI)
	}

	r.GET("/download/:file_id", h.Download)
	r.GET("/qr/:file_id", h.QRCode)
	r.POST("/qr/:file_id", h.QRCode)

	r.GET("/docs", handler.APIDocs(doc))
	r.GET(handler.OpenAPIPath, handler.OpenAPISpec(doc))

	r.GET("/healthz", handler.Health(db))
	r.GET("/metrics", metrics.Handler())
	return r, nil
}
