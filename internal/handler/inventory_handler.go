package handler

import (
	"net/http"
	"strconv"

	"bookameal/internal/models"
	"bookameal/internal/service"

	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(service service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventoryService: service, logger: logger}
}

// CheckAvailability handles GET /api/v1/menu-items/{id}/availability?quantity=N.
// quantity defaults to 1.
func (h *InventoryHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, models.ErrInvalidMenuItemID)
	if !ok {
		return
	}
	quantity := 1
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid quantity parameter")
			return
		}
		quantity = n
	}

	result, err := h.inventoryService.CheckAvailability(r.Context(), id, quantity)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
