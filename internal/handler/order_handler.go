package handler

import (
	"net/http"

	"bookameal/internal/models"
	"bookameal/internal/service"

	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req models.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), p, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orders, err := h.orderService.ListOrders(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.OrderList{NumResults: len(orders), Objects: orders})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, models.ErrInvalidOrderID)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), p, id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

// UpdateOrder handles PUT and PATCH /api/v1/orders/{id}. Both accept a
// partial body.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, models.ErrInvalidOrderID)
	if !ok {
		return
	}
	var req models.UpdateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdateOrder(r.Context(), p, id, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, models.ErrInvalidOrderID)
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(r.Context(), p, id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}
