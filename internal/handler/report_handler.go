package handler

import (
	"net/http"

	"bookameal/internal/service"

	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, logger: logger}
}

// GetStockReport handles GET /api/v1/reports/stock
func (h *ReportHandler) GetStockReport(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	report, err := h.reportService.GetStockReport(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
