package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errMissingHub = errors.New("hub dependency required")

// Dependencies carries the HTTP handler's collaborators.
type Dependencies struct {
	Hub       *Hub
	Logger    *zap.Logger
	StaticDir string
}

// NewHTTPHandler builds the HTTP surface: the websocket endpoint, a liveness
// probe, and (when configured) static serving for the client bundle.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Hub == nil {
		return nil, errMissingHub
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/_health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/ws", ServeWS(deps.Hub, logger))

	if deps.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(deps.StaticDir))))
	}

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	})
}
