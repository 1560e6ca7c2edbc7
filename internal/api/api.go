package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/invensight/invensight/internal/api/handlers"
	"github.com/invensight/invensight/internal/api/middleware"
	"github.com/invensight/invensight/internal/service"
)

type Services struct {
	Inventory *service.InventoryService
	Refresh   *service.RefreshService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
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

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Inventory != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.Inventory)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("/health", inventoryHandler.GetHealthRecords)
			inventoryGroup.GET("/summary", inventoryHandler.GetSummary)
			inventoryGroup.GET("/locations", inventoryHandler.GetLocationSummaries)
			inventoryGroup.GET("/overview", inventoryHandler.GetOverview)
		}

		pipelineHandler := handlers.NewPipelineHandler(services.Inventory, services.Refresh)
		{
			apiGroup.GET("/alerts", pipelineHandler.GetAlerts)
			apiGroup.GET("/forecasts", pipelineHandler.GetForecasts)
			apiGroup.GET("/reorders", pipelineHandler.GetPendingReorders)
			apiGroup.PUT("/reorders/:id/status", pipelineHandler.UpdateReorderStatus)
			apiGroup.GET("/anomalies", pipelineHandler.GetAnomalies)
			apiGroup.POST("/snapshots", pipelineHandler.IngestSnapshots)
		}

		if services.Refresh != nil {
			apiGroup.POST("/refresh/:component", pipelineHandler.RunRefresh)
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
