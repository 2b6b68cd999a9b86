package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookameal/internal/models"
)

type orderRepository struct {
	*Repository
}

func NewOrderRepository(db *sql.DB) *orderRepository {
	return &orderRepository{NewRepository(db)}
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int) (models.Order, error) {
	var order models.Order
	err := r.db.QueryRowContext(ctx, `
        SELECT
            id,
            user_id,
            menu_item_id,
            quantity,
            status,
            created_at,
            updated_at
        FROM orders
        WHERE id = $1`, id).Scan(
		&order.ID,
		&order.UserID,
		&order.MenuItemID,
		&order.Quantity,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return models.Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetOrdersByUser(ctx context.Context, userID int) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, menu_item_id, quantity, status, created_at, updated_at
        FROM orders
        WHERE user_id = $1 AND status = $2
        ORDER BY id`, userID, models.OrderActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.MenuItemID,
			&order.Quantity,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning orders: %w", err)
	}
	return orders, nil
}
