package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"bookameal/internal/models"

	"github.com/lib/pq"
)

// pgStore runs admissions in a database transaction. Menu item counters are
// serialised with row locks (SELECT ... FOR UPDATE) held until commit.
type pgStore struct {
	*Repository
}

func newPgStore(db *sql.DB) *pgStore {
	return &pgStore{NewRepository(db)}
}

func (s *pgStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) LockOrder(ctx context.Context, id int) (models.Order, error) {
	var order models.Order
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, user_id, menu_item_id, quantity, status, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE`, id).Scan(
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
		return models.Order{}, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

func (t *pgTx) LockMenuItems(ctx context.Context, ids ...int) (map[int]models.MenuItem, error) {
	keys := uniqueSorted(ids)
	arr := make([]int64, len(keys))
	for i, id := range keys {
		arr[i] = int64(id)
	}

	// Rows are locked in the order they are returned, so ORDER BY id gives
	// every admission the same lock order.
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, menu_id, meal_id, quantity, quantity_available, created_at
		FROM menu_items
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, pq.Array(arr))
	if err != nil {
		return nil, fmt.Errorf("failed to lock menu items: %w", err)
	}
	defer rows.Close()

	items := make(map[int]models.MenuItem, len(keys))
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.MenuID, &item.MealID, &item.Quantity, &item.QuantityAvailable, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning menu items: %w", err)
	}
	return items, nil
}

func (t *pgTx) GetMenu(ctx context.Context, id int) (models.Menu, error) {
	return scanMenu(t.tx.QueryRowContext(ctx, menuSelect+` WHERE id = $1`, id))
}

func (t *pgTx) SetQuantityAvailable(ctx context.Context, menuItemID, quantity int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE menu_items
		SET quantity_available = $1
		WHERE id = $2`, quantity, menuItemID)
	if err != nil {
		if pqCode(err) == pqCheckViolation {
			return fmt.Errorf("menu item %d quantity available %d: %w", menuItemID, quantity, ErrOutOfRange)
		}
		return fmt.Errorf("failed to update quantity available: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("menu item %d: %w", menuItemID, ErrNotFound)
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, order *models.Order) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, menu_item_id, quantity, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		order.UserID, order.MenuItemID, order.Quantity, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (t *pgTx) UpdateOrder(ctx context.Context, order *models.Order) error {
	err := t.tx.QueryRowContext(ctx, `
		UPDATE orders
		SET menu_item_id = $1, quantity = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`,
		order.MenuItemID, order.Quantity, order.ID,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("order %d: %w", order.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (t *pgTx) CancelOrder(ctx context.Context, id int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2`, models.OrderCancelled, id)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return nil
}

func uniqueSorted(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
