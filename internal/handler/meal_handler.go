package handler

import (
	"net/http"

	"bookameal/internal/models"
	"bookameal/internal/service"

	"go.uber.org/zap"
)

var errInvalidMealID = models.NewError(models.ErrValidation, "invalid meal id")

type MealHandler struct {
	mealService service.MealService
	logger      *zap.Logger
}

func NewMealHandler(mealService service.MealService, logger *zap.Logger) *MealHandler {
	return &MealHandler{mealService: mealService, logger: logger}
}

// CreateMeal handles POST /api/v1/meals
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var meal models.Meal
	if !decodeJSON(w, r, &meal) {
		return
	}
	created, err := h.mealService.CreateMeal(r.Context(), p, meal)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.mealService.ListMeals(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"num_results": len(meals),
		"objects":     meals,
	})
}

func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, errInvalidMealID)
	if !ok {
		return
	}
	meal, err := h.mealService.GetMeal(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, meal)
}

// UpdateMeal handles PUT /api/v1/meals/{id}. The body replaces the meal.
func (h *MealHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, errInvalidMealID)
	if !ok {
		return
	}
	var meal models.Meal
	if !decodeJSON(w, r, &meal) {
		return
	}
	updated, err := h.mealService.UpdateMeal(r.Context(), p, id, meal)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, errInvalidMealID)
	if !ok {
		return
	}
	if err := h.mealService.DeleteMeal(r.Context(), p, id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Meal deleted successfully"})
}
