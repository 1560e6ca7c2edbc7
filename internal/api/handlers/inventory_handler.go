package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/service"
)

// InventoryHandler serves the read side: health records, summaries and the
// dashboard overview.
type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

func (h *InventoryHandler) parseFilter(c *gin.Context) domain.InventoryFilter {
	filter := domain.InventoryFilter{
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	filter.LocationIDs = queryList(c, "location_ids")
	filter.ItemIDs = queryList(c, "item_ids")
	filter.Categories = queryList(c, "categories")

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if canonical, ok := domain.ParseStockStatus(status); ok {
			filter.Status = canonical
		}
	}

	return filter
}

// queryList accepts both repeated params (?item_ids=A&item_ids=B) and a
// comma-separated value (?item_ids=A,B), deduplicated.
func queryList(c *gin.Context, param string) []string {
	raw := c.QueryArray(param)
	if len(raw) == 0 {
		if single := strings.TrimSpace(c.Query(param)); single != "" {
			raw = []string{single}
		}
	}

	var values []string
	seen := make(map[string]struct{})
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			values = append(values, part)
		}
	}

	return values
}

func (h *InventoryHandler) GetHealthRecords(c *gin.Context) {
	filter := h.parseFilter(c)
	records, total, err := h.service.HealthRecords(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch health records", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":   records,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

func (h *InventoryHandler) GetSummary(c *gin.Context) {
	filter := h.parseFilter(c)
	summary, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *InventoryHandler) GetLocationSummaries(c *gin.Context) {
	summaries, err := h.service.LocationSummaries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch location summaries", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *InventoryHandler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch overview", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, overview)
}
