package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Dartline-Delivery/service-pricing/internal/application"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/domain"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/response"
)

// AdminQuoteHandler handles admin HTTP requests for quote management.
type AdminQuoteHandler struct {
	service *application.QuoteService
}

// NewAdminQuoteHandler creates a new AdminQuoteHandler.
func NewAdminQuoteHandler(service *application.QuoteService) *AdminQuoteHandler {
	return &AdminQuoteHandler{service: service}
}

// RegisterRoutes registers admin quote routes.
func (h *AdminQuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin")
	{
		admin.GET("/quotes", h.ListQuotes)
		admin.GET("/stats/quotes", h.QuoteStats)
	}
}

// ListQuotes handles GET /api/v1/admin/quotes. An optional status query
// filters by quote status.
func (h *AdminQuoteHandler) ListQuotes(c *gin.Context) {
	page, limit := parsePagination(c)

	var (
		result *domain.PaginatedResult[application.QuoteDTO]
		err    error
	)
	if status := c.Query("status"); status != "" {
		result, err = h.service.ListQuotesByStatus(c.Request.Context(), status, page, limit)
	} else {
		result, err = h.service.ListQuotes(c.Request.Context(), page, limit)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// QuoteStats handles GET /api/v1/admin/stats/quotes.
func (h *AdminQuoteHandler) QuoteStats(c *gin.Context) {
	stats, err := h.service.GetQuoteStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
