package service

import (
	"context"
	"errors"
	"strings"

	"bookameal/internal/dal"
	"bookameal/internal/models"
)

type MealService interface {
	CreateMeal(ctx context.Context, principal models.Principal, meal models.Meal) (models.Meal, error)
	GetMeal(ctx context.Context, id int) (models.Meal, error)
	ListMeals(ctx context.Context) ([]models.Meal, error)
	UpdateMeal(ctx context.Context, principal models.Principal, id int, meal models.Meal) (models.Meal, error)
	DeleteMeal(ctx context.Context, principal models.Principal, id int) error
}

type mealService struct {
	mealRepo dal.MealRepository
}

func NewMealService(mealRepo dal.MealRepository) MealService {
	return &mealService{mealRepo: mealRepo}
}

func validateMeal(meal *models.Meal) error {
	meal.Name = strings.TrimSpace(meal.Name)
	if meal.Name == "" {
		return models.ErrInvalidMealName
	}
	if meal.Cost < 0 {
		return models.ErrInvalidMealCost
	}
	return nil
}

func (s *mealService) CreateMeal(ctx context.Context, principal models.Principal, meal models.Meal) (models.Meal, error) {
	if err := RequireCaterer(principal); err != nil {
		return models.Meal{}, err
	}
	if err := validateMeal(&meal); err != nil {
		return models.Meal{}, err
	}
	return s.mealRepo.CreateMeal(ctx, meal)
}

func (s *mealService) GetMeal(ctx context.Context, id int) (models.Meal, error) {
	meal, err := s.mealRepo.GetMealByID(ctx, id)
	if errors.Is(err, dal.ErrNotFound) {
		return models.Meal{}, models.NotFoundf("Meal %d not found", id)
	}
	return meal, err
}

func (s *mealService) ListMeals(ctx context.Context) ([]models.Meal, error) {
	return s.mealRepo.GetAllMeals(ctx)
}

func (s *mealService) UpdateMeal(ctx context.Context, principal models.Principal, id int, meal models.Meal) (models.Meal, error) {
	if err := RequireCaterer(principal); err != nil {
		return models.Meal{}, err
	}
	if err := validateMeal(&meal); err != nil {
		return models.Meal{}, err
	}
	updated, err := s.mealRepo.UpdateMeal(ctx, id, meal)
	if errors.Is(err, dal.ErrNotFound) {
		return models.Meal{}, models.NotFoundf("Meal %d not found", id)
	}
	return updated, err
}

func (s *mealService) DeleteMeal(ctx context.Context, principal models.Principal, id int) error {
	if err := RequireCaterer(principal); err != nil {
		return err
	}
	err := s.mealRepo.DeleteMeal(ctx, id)
	switch {
	case errors.Is(err, dal.ErrNotFound):
		return models.NotFoundf("Meal %d not found", id)
	case errors.Is(err, dal.ErrInUse):
		return models.ErrMealInUse
	}
	return err
}
