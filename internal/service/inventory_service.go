package service

import (
	"context"
	"errors"

	"bookameal/internal/dal"
	"bookameal/internal/models"
)

type InventoryService interface {
	// CheckAvailability runs the ledger's admission checks on the current
	// counter without locking or reserving. A shortfall is reported in the
	// result rather than as an error.
	CheckAvailability(ctx context.Context, menuItemID, quantity int) (models.Availability, error)
}

type inventoryService struct {
	items  dal.MenuItemRepository
	menus  dal.MenuRepository
	ledger *Ledger
}

func NewInventoryService(items dal.MenuItemRepository, menus dal.MenuRepository, ledger *Ledger) InventoryService {
	return &inventoryService{items: items, menus: menus, ledger: ledger}
}

func (s *inventoryService) CheckAvailability(ctx context.Context, menuItemID, quantity int) (models.Availability, error) {
	if menuItemID <= 0 {
		return models.Availability{}, models.ErrInvalidMenuItemID
	}

	item, err := s.ledger.Peek(ctx, s.items, s.menus, menuItemID, quantity)
	result := models.Availability{MenuItemID: menuItemID, Requested: quantity, QuantityAvailable: item.QuantityAvailable}
	switch {
	case errors.Is(err, models.ErrInsufficientStock):
		return result, nil
	case err != nil:
		return models.Availability{}, err
	}
	result.Available = true
	return result, nil
}
