package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookameal/internal/models"
)

type menuItemRepository struct {
	*Repository
}

func NewMenuItemRepository(db *sql.DB) *menuItemRepository {
	return &menuItemRepository{NewRepository(db)}
}

// CreateMenuItem stores a menu item with its full stock available.
func (r *menuItemRepository) CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	item.QuantityAvailable = item.Quantity
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (menu_id, meal_id, quantity, quantity_available)
		VALUES ($1, $2, $3, $3)
		RETURNING id, created_at`,
		item.MenuID, item.MealID, item.Quantity,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return models.MenuItem{}, fmt.Errorf("menu item references: %w", ErrNotFound)
		}
		return models.MenuItem{}, fmt.Errorf("failed to create menu item: %w", err)
	}
	return item, nil
}

func (r *menuItemRepository) GetMenuItemByID(ctx context.Context, id int) (models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, menu_id, meal_id, quantity, quantity_available, created_at
		FROM menu_items
		WHERE id = $1`, id).Scan(
		&item.ID,
		&item.MenuID,
		&item.MealID,
		&item.Quantity,
		&item.QuantityAvailable,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MenuItem{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
		}
		return models.MenuItem{}, fmt.Errorf("failed to get menu item: %w", err)
	}
	return item, nil
}

func (r *menuItemRepository) GetMenuItemsByMenu(ctx context.Context, menuID int) ([]models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, menu_id, meal_id, quantity, quantity_available, created_at
		FROM menu_items
		WHERE menu_id = $1
		ORDER BY id`, menuID)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.MenuID, &item.MealID, &item.Quantity, &item.QuantityAvailable, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning menu items: %w", err)
	}
	return items, nil
}
