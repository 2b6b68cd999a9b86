package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookameal/internal/models"
)

type mealRepository struct {
	*Repository
}

func NewMealRepository(db *sql.DB) *mealRepository {
	return &mealRepository{NewRepository(db)}
}

func (r *mealRepository) CreateMeal(ctx context.Context, meal models.Meal) (models.Meal, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO meals (name, img_path, cost)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		meal.Name, meal.ImagePath, meal.Cost,
	).Scan(&meal.ID, &meal.CreatedAt, &meal.UpdatedAt)
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to create meal: %w", err)
	}
	return meal, nil
}

func (r *mealRepository) GetMealByID(ctx context.Context, id int) (models.Meal, error) {
	var meal models.Meal
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, img_path, cost, created_at, updated_at
		FROM meals
		WHERE id = $1`, id).Scan(
		&meal.ID,
		&meal.Name,
		&meal.ImagePath,
		&meal.Cost,
		&meal.CreatedAt,
		&meal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Meal{}, fmt.Errorf("meal %d: %w", id, ErrNotFound)
		}
		return models.Meal{}, fmt.Errorf("failed to get meal: %w", err)
	}
	return meal, nil
}

func (r *mealRepository) GetAllMeals(ctx context.Context) ([]models.Meal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, img_path, cost, created_at, updated_at
		FROM meals
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	meals := []models.Meal{}
	for rows.Next() {
		var meal models.Meal
		if err := rows.Scan(&meal.ID, &meal.Name, &meal.ImagePath, &meal.Cost, &meal.CreatedAt, &meal.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning meals: %w", err)
	}
	return meals, nil
}

func (r *mealRepository) UpdateMeal(ctx context.Context, id int, meal models.Meal) (models.Meal, error) {
	err := r.db.QueryRowContext(ctx, `
		UPDATE meals
		SET name = $1, img_path = $2, cost = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, created_at, updated_at`,
		meal.Name, meal.ImagePath, meal.Cost, id,
	).Scan(&meal.ID, &meal.CreatedAt, &meal.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Meal{}, fmt.Errorf("meal %d: %w", id, ErrNotFound)
		}
		return models.Meal{}, fmt.Errorf("failed to update meal: %w", err)
	}
	return meal, nil
}

func (r *mealRepository) DeleteMeal(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return fmt.Errorf("meal %d: %w", id, ErrInUse)
		}
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("meal %d: %w", id, ErrNotFound)
	}
	return nil
}
