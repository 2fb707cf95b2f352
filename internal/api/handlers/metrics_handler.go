package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/service"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// GetRunRate serves the latest run-rate partition with severity bands.
// Optional ?severity=critical,high filters to the named bands.
func (h *MetricsHandler) GetRunRate(c *gin.Context) {
	rows, err := h.service.GetRunRate(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to fetch run rate metrics")
		return
	}

	if raw := strings.TrimSpace(c.Query("severity")); raw != "" {
		wanted := make(map[domain.Severity]struct{})
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				wanted[domain.Severity(part)] = struct{}{}
			}
		}
		filtered := make([]domain.ClassifiedMetric, 0, len(rows))
		for _, m := range rows {
			if _, ok := wanted[m.Severity]; ok {
				filtered = append(filtered, m)
			}
		}
		rows = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"items": rows,
		"total": len(rows),
	})
}

// GetRawMaterials serves the latest raw-material status partition. Optional
// ?needs_replenished=true filters to shortages.
func (h *MetricsHandler) GetRawMaterials(c *gin.Context) {
	rows, err := h.service.GetRawMaterials(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to fetch raw material status")
		return
	}

	if c.Query("needs_replenished") == "true" {
		filtered := make([]domain.RawMaterialStatus, 0, len(rows))
		for _, s := range rows {
			if s.NeedsReplenished {
				filtered = append(filtered, s)
			}
		}
		rows = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"items": rows,
		"total": len(rows),
	})
}

// GetAlertPreview serves the alert payloads the alerts job would publish
// right now, without delivering them.
func (h *MetricsHandler) GetAlertPreview(c *gin.Context) {
	payloads, err := h.service.GetAlertPreview(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to build alert preview")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": payloads,
		"total":  len(payloads),
	})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
