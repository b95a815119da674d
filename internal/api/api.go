// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/api/handlers"
	"github.com/andresuchdata/workshop-dashboard/internal/api/middleware"
	"github.com/andresuchdata/workshop-dashboard/internal/service"
	"github.com/andresuchdata/workshop-dashboard/internal/view"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Sessions *service.SessionManager
	Records  view.RecordSource
	Queue    view.QueueSource
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if services != nil && services.Sessions != nil {
			body["sessions"] = services.Sessions.Len()
		}
		c.JSON(http.StatusOK, body)
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Session())

	if services != nil && services.Sessions != nil {
		viewHandler := handlers.NewViewHandler(services.Sessions, services.Records, services.Queue)

		viewGroup := apiGroup.Group("/views")
		{
			viewGroup.POST("/:kind", viewHandler.Mount)

			sessionGroup := viewGroup.Group("/session/:id")
			{
				sessionGroup.GET("", viewHandler.GetView)
				sessionGroup.DELETE("", viewHandler.CloseSession)
				sessionGroup.POST("/filters", viewHandler.ApplyFilter)
				sessionGroup.POST("/queue/refresh", viewHandler.RefreshQueue)
				sessionGroup.POST("/comments/:seq", viewHandler.OpenComment)
				sessionGroup.DELETE("/comments", viewHandler.CloseComment)
			}
		}

		if services.Records != nil {
			apiGroup.GET("/records/:kind", viewHandler.GetRecords)
		}
		if services.Queue != nil {
			apiGroup.GET("/queue/:kind", viewHandler.GetQueue)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
