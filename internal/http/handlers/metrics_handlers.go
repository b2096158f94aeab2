package handlers

import (
	"net/http"
)

// GetDashboardMetricsHandler godoc
// @Summary Dashboard counts for the calling vendor
// @Tags metrics
// @Produce json
// @Success 200 {object} repo.Metrics
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /vendor/dashboard [get]
// @Security BearerAuth
func GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	m, err := metricsRepo.GetDashboardMetrics(r.Context(), vendorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, m)
}
