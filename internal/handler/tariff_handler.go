package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Dartline-Delivery/service-pricing/internal/application"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/response"
)

// UpdateTariffRequest carries the tariff entries to upsert, keyed by
// vehicle class.
type UpdateTariffRequest struct {
	Tariffs map[string]quoteDomain.Tariff `json:"tariffs" binding:"required"`
}

// TariffHandler handles HTTP requests for the tariff plan.
type TariffHandler struct {
	service *application.TariffService
}

// NewTariffHandler creates a new TariffHandler.
func NewTariffHandler(service *application.TariffService) *TariffHandler {
	return &TariffHandler{service: service}
}

// RegisterRoutes registers tariff routes on the given router group.
func (h *TariffHandler) RegisterRoutes(r *gin.RouterGroup) {
	tariff := r.Group("/api/v1/tariff")
	{
		tariff.GET("", h.GetTariff)
		tariff.PUT("", h.UpdateTariff)
	}
}

// GetTariff handles GET /api/v1/tariff.
func (h *TariffHandler) GetTariff(c *gin.Context) {
	response.Success(c, h.service.CurrentPlan())
}

// UpdateTariff handles PUT /api/v1/tariff.
func (h *TariffHandler) UpdateTariff(c *gin.Context) {
	var req UpdateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	plan := make(quoteDomain.TariffPlan, len(req.Tariffs))
	for class, tariff := range req.Tariffs {
		plan[quoteDomain.VehicleClass(class)] = tariff
	}

	result, err := h.service.UpdatePlan(c.Request.Context(), plan)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
