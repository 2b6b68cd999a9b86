package service

import (
	"context"
	"errors"
	"fmt"

	"bookameal/internal/clock"
	"bookameal/internal/dal"
	"bookameal/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ledger owns the available-quantity counter of every menu item. Its
// adjustments run against menu items locked by the surrounding store
// transaction, so a check and the write that follows it see the same
// snapshot. Peek is the one unlocked read.
type Ledger struct {
	clock  clock.Clock
	tracer trace.Tracer
}

func NewLedger(c clock.Clock, tracer trace.Tracer) *Ledger {
	return &Ledger{clock: c, tracer: tracer}
}

// Stock is the ledger's view of the menu items locked in one transaction.
// It tracks its own writes so several adjustments in the same transaction
// compose.
type Stock struct {
	ledger *Ledger
	tx     dal.Tx
	items  map[int]models.MenuItem
}

// Open locks the given menu items for the rest of tx.
func (l *Ledger) Open(ctx context.Context, tx dal.Tx, menuItemIDs ...int) (*Stock, error) {
	items, err := tx.LockMenuItems(ctx, menuItemIDs...)
	if err != nil {
		return nil, err
	}
	return &Stock{ledger: l, tx: tx, items: items}, nil
}

// CheckAvailability reports the quantity available for menuItemID if
// requested units can be taken from it right now.
//
// Failures, in evaluation order: InvalidQuantity, NotFound, MenuExpired,
// InsufficientStock.
func (s *Stock) CheckAvailability(ctx context.Context, menuItemID, requested int) (int, error) {
	item, err := s.ledger.check(ctx, s, menuItemID, requested)
	if err != nil {
		return 0, err
	}
	return item.QuantityAvailable, nil
}

// Peek runs the same checks as CheckAvailability on a plain read of the menu
// item, without locking it. The answer may be stale by the time the caller
// acts on it. On InsufficientStock the returned item still carries the
// current counter.
func (l *Ledger) Peek(ctx context.Context, items dal.MenuItemRepository, menus dal.MenuRepository, menuItemID, requested int) (models.MenuItem, error) {
	return l.check(ctx, readSource{items: items, menus: menus}, menuItemID, requested)
}

// itemSource is where a check reads its menu item and menu from.
type itemSource interface {
	menuItem(ctx context.Context, id int) (models.MenuItem, error)
	menu(ctx context.Context, id int) (models.Menu, error)
}

func (l *Ledger) check(ctx context.Context, src itemSource, menuItemID, requested int) (models.MenuItem, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.check")
	defer span.End()
	span.SetAttributes(
		attribute.Int("menu_item.id", menuItemID),
		attribute.Int("ledger.requested", requested),
	)

	if requested <= 0 {
		return models.MenuItem{}, spanError(span, models.ErrNonPositiveQty)
	}
	item, err := l.servable(ctx, src, menuItemID)
	if err != nil {
		return models.MenuItem{}, spanError(span, err)
	}
	span.SetAttributes(
		attribute.Int("ledger.available", item.QuantityAvailable),
		attribute.Int("ledger.reserved", item.Reserved()),
	)
	if requested > item.QuantityAvailable {
		return item, spanError(span, models.Errorf(models.ErrInsufficientStock,
			"Only %d menu items are available", item.QuantityAvailable))
	}
	span.SetStatus(codes.Ok, "available")
	return item, nil
}

// servable returns the item if it exists and its menu has not expired.
func (l *Ledger) servable(ctx context.Context, src itemSource, menuItemID int) (models.MenuItem, error) {
	item, err := src.menuItem(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return models.MenuItem{}, menuItemNotFound()
		}
		return models.MenuItem{}, err
	}
	menu, err := src.menu(ctx, item.MenuID)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return models.MenuItem{}, menuItemNotFound()
		}
		return models.MenuItem{}, err
	}
	if menu.ExpiredAt(l.clock.Now()) {
		return models.MenuItem{}, models.ErrExpired
	}
	return item, nil
}

// Reserve takes quantity units from menuItemID after checking availability.
func (s *Stock) Reserve(ctx context.Context, menuItemID, quantity int) error {
	available, err := s.CheckAvailability(ctx, menuItemID, quantity)
	if err != nil {
		return err
	}
	return s.set(ctx, menuItemID, available-quantity)
}

// Release returns quantity units to menuItemID. It never lifts the counter
// above the stock the item was created with.
func (s *Stock) Release(ctx context.Context, menuItemID, quantity int) error {
	if quantity <= 0 {
		return models.ErrNonPositiveQty
	}
	item, ok := s.items[menuItemID]
	if !ok {
		return menuItemNotFound()
	}
	if quantity > item.Reserved() {
		return fmt.Errorf("menu item %d: releasing %d with %d reserved: %w",
			menuItemID, quantity, item.Reserved(), models.ErrStockCeiling)
	}
	return s.set(ctx, menuItemID, item.QuantityAvailable+quantity)
}

// Adjust moves a reservation on menuItemID from oldQuantity to newQuantity:
// a growth is reserved with the usual checks, a shrink is released. The menu
// must still be servable either way.
func (s *Stock) Adjust(ctx context.Context, menuItemID, oldQuantity, newQuantity int) error {
	if newQuantity <= 0 {
		return models.ErrNonPositiveQty
	}
	if _, err := s.ledger.servable(ctx, s, menuItemID); err != nil {
		return err
	}
	switch delta := newQuantity - oldQuantity; {
	case delta > 0:
		return s.Reserve(ctx, menuItemID, delta)
	case delta < 0:
		return s.Release(ctx, menuItemID, -delta)
	}
	return nil
}

// Available is the counter as seen by this transaction.
func (s *Stock) Available(menuItemID int) (int, bool) {
	item, ok := s.items[menuItemID]
	return item.QuantityAvailable, ok
}

func (s *Stock) menuItem(ctx context.Context, id int) (models.MenuItem, error) {
	item, ok := s.items[id]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %d: %w", id, dal.ErrNotFound)
	}
	return item, nil
}

func (s *Stock) menu(ctx context.Context, id int) (models.Menu, error) {
	return s.tx.GetMenu(ctx, id)
}

type readSource struct {
	items dal.MenuItemRepository
	menus dal.MenuRepository
}

func (r readSource) menuItem(ctx context.Context, id int) (models.MenuItem, error) {
	return r.items.GetMenuItemByID(ctx, id)
}

func (r readSource) menu(ctx context.Context, id int) (models.Menu, error) {
	return r.menus.GetMenuByID(ctx, id)
}

func (s *Stock) set(ctx context.Context, menuItemID, quantity int) error {
	if err := s.tx.SetQuantityAvailable(ctx, menuItemID, quantity); err != nil {
		return err
	}
	item := s.items[menuItemID]
	item.QuantityAvailable = quantity
	s.items[menuItemID] = item
	return nil
}

func menuItemNotFound() error {
	return models.NotFoundf("No menu item found for that id")
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
