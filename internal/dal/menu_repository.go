package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookameal/internal/models"
)

const menuSelect = `
	SELECT id, category, day, caterer_id, created_at
	FROM menus`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenu(row rowScanner) (models.Menu, error) {
	var menu models.Menu
	err := row.Scan(&menu.ID, &menu.Category, &menu.Day, &menu.CatererID, &menu.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Menu{}, fmt.Errorf("menu: %w", ErrNotFound)
		}
		return models.Menu{}, fmt.Errorf("failed to get menu: %w", err)
	}
	menu.Day = models.Today(menu.Day)
	return menu, nil
}

type menuRepository struct {
	*Repository
}

func NewMenuRepository(db *sql.DB) *menuRepository {
	return &menuRepository{NewRepository(db)}
}

func (r *menuRepository) CreateMenu(ctx context.Context, menu models.Menu) (models.Menu, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO menus (category, day, caterer_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		menu.Category, menu.DayString(), menu.CatererID,
	).Scan(&menu.ID, &menu.CreatedAt)
	if err != nil {
		return models.Menu{}, fmt.Errorf("failed to create menu: %w", err)
	}
	return menu, nil
}

func (r *menuRepository) GetMenuByID(ctx context.Context, id int) (models.Menu, error) {
	return scanMenu(r.db.QueryRowContext(ctx, menuSelect+` WHERE id = $1`, id))
}

func (r *menuRepository) GetAllMenus(ctx context.Context) ([]models.Menu, error) {
	rows, err := r.db.QueryContext(ctx, menuSelect+` ORDER BY day DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query menus: %w", err)
	}
	defer rows.Close()

	menus := []models.Menu{}
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, menu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning menus: %w", err)
	}
	return menus, nil
}

func (r *menuRepository) DeleteMenu(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return fmt.Errorf("menu %d: %w", id, ErrInUse)
		}
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("menu %d: %w", id, ErrNotFound)
	}
	return nil
}
