package handler

import (
	"net/http"

	"bookameal/internal/models"
	"bookameal/internal/service"

	"go.uber.org/zap"
)

var errInvalidMenuID = models.NewError(models.ErrValidation, "invalid menu id")

type MenuHandler struct {
	menuService service.MenuService
	logger      *zap.Logger
}

func NewMenuHandler(menuService service.MenuService, logger *zap.Logger) *MenuHandler {
	return &MenuHandler{menuService: menuService, logger: logger}
}

// CreateMenu handles POST /api/v1/menus
func (h *MenuHandler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req models.CreateMenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	menu, err := h.menuService.CreateMenu(r.Context(), p, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, menu)
}

// ListMenus handles GET /api/v1/menus
func (h *MenuHandler) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.menuService.ListMenus(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"num_results": len(menus),
		"objects":     menus,
	})
}

// GetMenu handles GET /api/v1/menus/{id}
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, errInvalidMenuID)
	if !ok {
		return
	}
	menu, err := h.menuService.GetMenu(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, menu)
}

// DeleteMenu handles DELETE /api/v1/menus/{id}
func (h *MenuHandler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, errInvalidMenuID)
	if !ok {
		return
	}
	if err := h.menuService.DeleteMenu(r.Context(), p, id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Menu deleted successfully"})
}

// ListMenuItems handles GET /api/v1/menus/{id}/items
func (h *MenuHandler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, errInvalidMenuID)
	if !ok {
		return
	}
	items, err := h.menuService.ListMenuItems(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"num_results": len(items),
		"objects":     items,
	})
}

// CreateMenuItem handles POST /api/v1/menu-items
func (h *MenuHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req models.CreateMenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.menuService.CreateMenuItem(r.Context(), p, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

// GetMenuItem handles GET /api/v1/menu-items/{id}
func (h *MenuHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, models.ErrInvalidMenuItemID)
	if !ok {
		return
	}
	item, err := h.menuService.GetMenuItem(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}
