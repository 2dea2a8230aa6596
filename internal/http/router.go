package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Arwin-j/rouTU/internal/config"
	"github.com/Arwin-j/rouTU/internal/http/handler"
	httpmiddleware "github.com/Arwin-j/rouTU/internal/http/middleware"
	"github.com/Arwin-j/rouTU/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, api *handler.APIHandler, authMiddleware *httpmiddleware.Auth) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/", api.Welcome)
	r.GET("/healthz", api.Healthz)

	r.POST("/route", authMiddleware.ValidateJWT, api.Route)
	r.POST("/process-schedule", api.ProcessSchedule)

	return r
}
