package dal

import (
	"context"
	"database/sql"
	"fmt"

	"bookameal/internal/models"
)

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *reportRepository {
	return &reportRepository{db: db}
}

// GetStockReport lists every menu item next to the orders currently holding
// its stock.
func (r *reportRepository) GetStockReport(ctx context.Context) ([]models.StockLine, error) {
	query := `
		SELECT
			mi.id,
			mi.menu_id,
			mi.meal_id,
			mi.quantity,
			mi.quantity_available,
			COUNT(o.id) AS active_orders,
			COALESCE(SUM(o.quantity), 0) AS active_quantity
		FROM menu_items mi
		LEFT JOIN orders o ON o.menu_item_id = mi.id AND o.status = $1
		GROUP BY mi.id, mi.menu_id, mi.meal_id, mi.quantity, mi.quantity_available
		ORDER BY mi.id
	`

	rows, err := r.db.QueryContext(ctx, query, models.OrderActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock report: %w", err)
	}
	defer rows.Close()

	lines := []models.StockLine{}
	for rows.Next() {
		var line models.StockLine
		if err := rows.Scan(
			&line.MenuItemID,
			&line.MenuID,
			&line.MealID,
			&line.Quantity,
			&line.QuantityAvailable,
			&line.ActiveOrders,
			&line.ActiveQuantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock line: %w", err)
		}
		line.Reconcile()
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning stock lines: %w", err)
	}
	return lines, nil
}
