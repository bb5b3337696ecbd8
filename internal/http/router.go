package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"distrust-bot/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
// Si jwtSvc es nil las rutas quedan sin autenticación (modo desarrollo).
func NewRouter(
	logger *zap.Logger,
	gameH *GameHandler,
	events http.HandlerFunc,
	jwtSvc *service.JWTService,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("")
	if jwtSvc != nil {
		api.Use(JWTAuthMiddleware(jwtSvc))
	}

	sessions := api.Group("/sessions", jsonContentTypeMiddleware())
	sessions.POST("", gameH.CreateSession)
	sessions.GET("/:id", gameH.GetSession)
	sessions.GET("/:id/render", gameH.GetRender)
	sessions.POST("/:id/actions", gameH.SubmitAction)

	api.POST("/messages", jsonContentTypeMiddleware(), gameH.PostMessage)

	if events != nil {
		api.GET("/events", gin.WrapF(events))
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
