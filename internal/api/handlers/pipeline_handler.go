package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/service"
)

// PipelineHandler serves the derived-data surfaces (alerts, forecasts,
// reorders, anomalies), snapshot ingestion, and manual refresh.
type PipelineHandler struct {
	inventory *service.InventoryService
	refresh   *service.RefreshService
}

func NewPipelineHandler(inventory *service.InventoryService, refresh *service.RefreshService) *PipelineHandler {
	return &PipelineHandler{inventory: inventory, refresh: refresh}
}

func (h *PipelineHandler) GetAlerts(c *gin.Context) {
	includeResolved := c.Query("include_resolved") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	alerts, err := h.inventory.Alerts(c.Request.Context(), includeResolved, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (h *PipelineHandler) GetForecasts(c *gin.Context) {
	filter := domain.InventoryFilter{
		LocationIDs: queryList(c, "location_ids"),
		ItemIDs:     queryList(c, "item_ids"),
	}

	forecasts, err := h.inventory.Forecasts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch forecasts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, forecasts)
}

func (h *PipelineHandler) GetPendingReorders(c *gin.Context) {
	recs, err := h.inventory.PendingReorders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reorder recommendations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}

type updateReorderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *PipelineHandler) UpdateReorderStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recommendation id"})
		return
	}

	var req updateReorderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required", "details": err.Error()})
		return
	}

	if err := h.inventory.UpdateReorderStatus(c.Request.Context(), id, req.Status); err != nil {
		if strings.Contains(err.Error(), "invalid recommendation status") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update recommendation", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": strings.ToUpper(strings.TrimSpace(req.Status))})
}

func (h *PipelineHandler) GetAnomalies(c *gin.Context) {
	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "168"))
	if hours <= 0 {
		hours = 168
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	records, err := h.inventory.RecentAnomalies(c.Request.Context(), since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch anomalies", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"anomalies": records, "count": len(records)})
}

type ingestRequest struct {
	Facts []domain.InventoryFact `json:"facts" binding:"required"`
}

func (h *PipelineHandler) IngestSnapshots(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}
	if len(req.Facts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "facts must not be empty"})
		return
	}

	inserted, err := h.inventory.Ingest(c.Request.Context(), req.Facts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingest failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"received": len(req.Facts),
		"inserted": inserted,
		"skipped":  len(req.Facts) - inserted,
	})
}

func (h *PipelineHandler) RunRefresh(c *gin.Context) {
	component := c.Param("component")

	var err error
	if component == "all" {
		err = h.refresh.RefreshAll(c.Request.Context())
	} else {
		err = h.refresh.Refresh(c.Request.Context(), component)
	}
	if err != nil {
		if strings.Contains(err.Error(), "unknown refresh component") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "completed"})
}
