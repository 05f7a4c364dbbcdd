package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/clearance-agent/internal/api/handlers"
	"github.com/andresuchdata/clearance-agent/internal/api/middleware"
	"github.com/andresuchdata/clearance-agent/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ClearanceService *service.ClearanceService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
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
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ClearanceService != nil {
		clearanceHandler := handlers.NewClearanceHandler(services.ClearanceService)
		clearanceGroup := apiGroup.Group("/clearance")
		{
			clearanceGroup.GET("/categories", clearanceHandler.GetCategories)
			clearanceGroup.GET("/records", clearanceHandler.GetRecords)
			clearanceGroup.GET("/recommendations", clearanceHandler.GetRecommendations)
			clearanceGroup.GET("/suggestions", clearanceHandler.GetSuggestions)
			clearanceGroup.GET("/report.pdf", clearanceHandler.GetReport)
			clearanceGroup.POST("/ask", clearanceHandler.Ask)
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
