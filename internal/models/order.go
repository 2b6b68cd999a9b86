package models

import (
	"time"
)

type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID         int         `json:"id"`
	UserID     int         `json:"user_id"`
	MenuItemID int         `json:"menu_item_id"`
	Quantity   int         `json:"quantity"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (o Order) Active() bool {
	return o.Status == OrderActive
}

// CreateOrderRequest is the payload of POST /orders. Pointers distinguish an
// omitted field from a zero value.
type CreateOrderRequest struct {
	MenuItemID *int `json:"menu_item_id"`
	Quantity   *int `json:"quantity"`
}

// UpdateOrderRequest is the payload of PUT/PATCH /orders/{id}. Omitted fields
// keep their current value.
type UpdateOrderRequest struct {
	MenuItemID *int `json:"menu_item_id"`
	Quantity   *int `json:"quantity"`
}

// OrderList mirrors the list envelope of the catalog endpoints.
type OrderList struct {
	NumResults int     `json:"num_results"`
	Objects    []Order `json:"objects"`
}
