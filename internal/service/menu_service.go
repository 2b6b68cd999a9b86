package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookameal/internal/clock"
	"bookameal/internal/dal"
	"bookameal/internal/models"
)

type MenuService interface {
	CreateMenu(ctx context.Context, principal models.Principal, req models.CreateMenuRequest) (models.Menu, error)
	GetMenu(ctx context.Context, id int) (models.Menu, error)
	ListMenus(ctx context.Context) ([]models.Menu, error)
	DeleteMenu(ctx context.Context, principal models.Principal, id int) error

	CreateMenuItem(ctx context.Context, principal models.Principal, req models.CreateMenuItemRequest) (models.MenuItem, error)
	GetMenuItem(ctx context.Context, id int) (models.MenuItem, error)
	ListMenuItems(ctx context.Context, menuID int) ([]models.MenuItem, error)
}

type menuService struct {
	menuRepo     dal.MenuRepository
	menuItemRepo dal.MenuItemRepository
	mealRepo     dal.MealRepository
	clock        clock.Clock
}

func NewMenuService(menuRepo dal.MenuRepository, menuItemRepo dal.MenuItemRepository, mealRepo dal.MealRepository, c clock.Clock) MenuService {
	return &menuService{menuRepo: menuRepo, menuItemRepo: menuItemRepo, mealRepo: mealRepo, clock: c}
}

// CreateMenu publishes a menu owned by the calling caterer. The day defaults
// to today.
func (s *menuService) CreateMenu(ctx context.Context, principal models.Principal, req models.CreateMenuRequest) (models.Menu, error) {
	if err := RequireCaterer(principal); err != nil {
		return models.Menu{}, err
	}
	category := models.MenuCategory(strings.ToUpper(string(req.Category)))
	if !category.Valid() {
		return models.Menu{}, models.ErrInvalidMenuCategory
	}
	day := models.Today(s.clock.Now())
	if req.Day != "" {
		parsed, err := time.Parse(models.DateLayout, req.Day)
		if err != nil {
			return models.Menu{}, models.ErrInvalidMenuDay
		}
		day = parsed
	}
	return s.menuRepo.CreateMenu(ctx, models.Menu{Category: category, Day: day, CatererID: principal.ID})
}

func (s *menuService) GetMenu(ctx context.Context, id int) (models.Menu, error) {
	menu, err := s.menuRepo.GetMenuByID(ctx, id)
	if errors.Is(err, dal.ErrNotFound) {
		return models.Menu{}, models.NotFoundf("Menu %d not found", id)
	}
	return menu, err
}

func (s *menuService) ListMenus(ctx context.Context) ([]models.Menu, error) {
	return s.menuRepo.GetAllMenus(ctx)
}

func (s *menuService) DeleteMenu(ctx context.Context, principal models.Principal, id int) error {
	if err := RequireCaterer(principal); err != nil {
		return err
	}
	menu, err := s.GetMenu(ctx, id)
	if err != nil {
		return err
	}
	if menu.CatererID != principal.ID {
		return models.ErrMenuOwner
	}
	err = s.menuRepo.DeleteMenu(ctx, id)
	switch {
	case errors.Is(err, dal.ErrInUse):
		return models.ErrMenuInUse
	case errors.Is(err, dal.ErrNotFound):
		return models.NotFoundf("Menu %d not found", id)
	}
	return err
}

// CreateMenuItem offers a meal on one of the caller's menus with the given
// stock, all of it available.
func (s *menuService) CreateMenuItem(ctx context.Context, principal models.Principal, req models.CreateMenuItemRequest) (models.MenuItem, error) {
	if err := RequireCaterer(principal); err != nil {
		return models.MenuItem{}, err
	}
	if req.Quantity < 0 {
		return models.MenuItem{}, models.ErrInvalidStock
	}
	menu, err := s.GetMenu(ctx, req.MenuID)
	if err != nil {
		return models.MenuItem{}, err
	}
	if menu.CatererID != principal.ID {
		return models.MenuItem{}, models.ErrMenuOwner
	}
	if _, err := s.mealRepo.GetMealByID(ctx, req.MealID); err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return models.MenuItem{}, models.NotFoundf("Meal %d not found", req.MealID)
		}
		return models.MenuItem{}, err
	}

	item, err := s.menuItemRepo.CreateMenuItem(ctx, models.MenuItem{
		MenuID:   req.MenuID,
		MealID:   req.MealID,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return models.MenuItem{}, models.NotFoundf("Menu or meal not found")
		}
		return models.MenuItem{}, fmt.Errorf("failed to add menu item: %w", err)
	}
	return item, nil
}

func (s *menuService) GetMenuItem(ctx context.Context, id int) (models.MenuItem, error) {
	if id <= 0 {
		return models.MenuItem{}, models.ErrInvalidMenuItemID
	}
	item, err := s.menuItemRepo.GetMenuItemByID(ctx, id)
	if errors.Is(err, dal.ErrNotFound) {
		return models.MenuItem{}, menuItemNotFound()
	}
	return item, err
}

func (s *menuService) ListMenuItems(ctx context.Context, menuID int) ([]models.MenuItem, error) {
	if _, err := s.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}
	return s.menuItemRepo.GetMenuItemsByMenu(ctx, menuID)
}
