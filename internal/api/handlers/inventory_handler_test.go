package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/invensight/invensight/internal/domain"
)

func testContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestQueryListAcceptsBothStyles(t *testing.T) {
	c := testContext(t, "item_ids=SKU-1&item_ids=SKU-2,SKU-3,%20SKU-1")

	values := queryList(c, "item_ids")
	if len(values) != 3 {
		t.Fatalf("values = %v, want 3 deduplicated entries", values)
	}
	if values[0] != "SKU-1" || values[1] != "SKU-2" || values[2] != "SKU-3" {
		t.Errorf("values = %v", values)
	}
}

func TestParseFilterDefaultsAndStatus(t *testing.T) {
	h := NewInventoryHandler(nil)

	c := testContext(t, "status=critical&page=2&page_size=10")
	filter := h.parseFilter(c)

	if filter.Status != domain.StatusCritical {
		t.Errorf("status = %q, want %q", filter.Status, domain.StatusCritical)
	}
	if filter.Page != 2 || filter.PageSize != 10 {
		t.Errorf("pagination = %d/%d", filter.Page, filter.PageSize)
	}

	// Unknown status labels are dropped rather than passed through.
	c = testContext(t, "status=bogus")
	if filter := h.parseFilter(c); filter.Status != "" {
		t.Errorf("unknown status parsed as %q, want empty", filter.Status)
	}
}
