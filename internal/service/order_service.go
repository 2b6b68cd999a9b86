package service

import (
	"context"
	"errors"

	"bookameal/internal/dal"
	"bookameal/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// defaultOrderQuantity applies when a create request omits quantity.
const defaultOrderQuantity = 1

type OrderService interface {
	CreateOrder(ctx context.Context, principal models.Principal, req models.CreateOrderRequest) (models.Order, error)
	GetOrder(ctx context.Context, principal models.Principal, id int) (models.Order, error)
	ListOrders(ctx context.Context, principal models.Principal) ([]models.Order, error)
	UpdateOrder(ctx context.Context, principal models.Principal, id int, req models.UpdateOrderRequest) (models.Order, error)
	DeleteOrder(ctx context.Context, principal models.Principal, id int) error
}

type orderService struct {
	store     dal.Store
	orderRepo dal.OrderRepository
	ledger    *Ledger
	guard     Guard
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewOrderService(
	store dal.Store,
	orderRepo dal.OrderRepository,
	ledger *Ledger,
	guard Guard,
	logger *zap.Logger,
	tracer trace.Tracer,
) OrderService {
	return &orderService{
		store:     store,
		orderRepo: orderRepo,
		ledger:    ledger,
		guard:     guard,
		logger:    logger,
		tracer:    tracer,
	}
}

// CreateOrder reserves stock on the requested menu item and stores an active
// order owned by principal. Check, reservation and insert commit together.
func (s *orderService) CreateOrder(ctx context.Context, principal models.Principal, req models.CreateOrderRequest) (models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create")
	defer span.End()

	if req.MenuItemID == nil {
		return models.Order{}, s.reject(span, "create", models.ErrMissingMenuItemID)
	}
	quantity := defaultOrderQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	span.SetAttributes(
		attribute.Int("user.id", principal.ID),
		attribute.Int("menu_item.id", *req.MenuItemID),
		attribute.Int("order.quantity", quantity),
	)
	if quantity <= 0 {
		return models.Order{}, s.reject(span, "create", models.ErrNonPositiveQty)
	}

	order := models.Order{
		UserID:     principal.ID,
		MenuItemID: *req.MenuItemID,
		Quantity:   quantity,
		Status:     models.OrderActive,
	}
	err := s.store.InTx(ctx, func(tx dal.Tx) error {
		stock, err := s.ledger.Open(ctx, tx, order.MenuItemID)
		if err != nil {
			return err
		}
		if err := stock.Reserve(ctx, order.MenuItemID, order.Quantity); err != nil {
			return err
		}
		return tx.InsertOrder(ctx, &order)
	})
	if err != nil {
		return models.Order{}, s.reject(span, "create", err)
	}

	span.SetAttributes(attribute.Int("order.id", order.ID))
	span.SetStatus(codes.Ok, "order created")
	s.logger.Info("order created",
		zap.Int("order_id", order.ID),
		zap.Int("user_id", order.UserID),
		zap.Int("menu_item_id", order.MenuItemID),
		zap.Int("quantity", order.Quantity),
	)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, principal models.Principal, id int) (models.Order, error) {
	if id <= 0 {
		return models.Order{}, models.ErrInvalidOrderID
	}
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return models.Order{}, models.ErrOrderNotFound
		}
		return models.Order{}, err
	}
	if !order.Active() {
		return models.Order{}, models.ErrOrderNotFound
	}
	if err := authorize(s.guard, principal, order, models.ErrOrderAccess); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListOrders returns the principal's own active orders.
func (s *orderService) ListOrders(ctx context.Context, principal models.Principal) ([]models.Order, error) {
	return s.orderRepo.GetOrdersByUser(ctx, principal.ID)
}

// UpdateOrder moves an order to a new menu item and/or quantity. Omitted
// fields keep their value. On the same menu item only the difference is
// reserved or released; on a different one the old reservation is released
// and the new one taken, all in one transaction.
func (s *orderService) UpdateOrder(ctx context.Context, principal models.Principal, id int, req models.UpdateOrderRequest) (models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.update")
	defer span.End()
	span.SetAttributes(attribute.Int("order.id", id), attribute.Int("user.id", principal.ID))

	if id <= 0 {
		return models.Order{}, s.reject(span, "update", models.ErrInvalidOrderID)
	}

	var updated models.Order
	err := s.store.InTx(ctx, func(tx dal.Tx) error {
		current, err := s.lockActiveOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authorize(s.guard, principal, current, models.ErrOrderEdit); err != nil {
			return err
		}
		if req.MenuItemID == nil && req.Quantity == nil {
			return models.ErrEmptyUpdate
		}

		updated = current
		if req.MenuItemID != nil {
			updated.MenuItemID = *req.MenuItemID
		}
		if req.Quantity != nil {
			updated.Quantity = *req.Quantity
		}
		span.SetAttributes(
			attribute.Int("menu_item.id", updated.MenuItemID),
			attribute.Int("order.quantity", updated.Quantity),
		)
		if updated.Quantity <= 0 {
			return models.ErrNonPositiveQty
		}

		stock, err := s.ledger.Open(ctx, tx, current.MenuItemID, updated.MenuItemID)
		if err != nil {
			return err
		}
		if updated.MenuItemID == current.MenuItemID {
			err = stock.Adjust(ctx, updated.MenuItemID, current.Quantity, updated.Quantity)
		} else {
			err = s.move(ctx, stock, current, updated)
		}
		if err != nil {
			return err
		}
		return tx.UpdateOrder(ctx, &updated)
	})
	if err != nil {
		return models.Order{}, s.reject(span, "update", err)
	}

	span.SetStatus(codes.Ok, "order updated")
	s.logger.Info("order updated",
		zap.Int("order_id", updated.ID),
		zap.Int("menu_item_id", updated.MenuItemID),
		zap.Int("quantity", updated.Quantity),
	)
	return updated, nil
}

// move reserves on the new menu item before releasing the old one, so a
// failed reservation returns before anything is written.
func (s *orderService) move(ctx context.Context, stock *Stock, from, to models.Order) error {
	if err := stock.Reserve(ctx, to.MenuItemID, to.Quantity); err != nil {
		return err
	}
	return stock.Release(ctx, from.MenuItemID, from.Quantity)
}

// DeleteOrder cancels an order and returns its quantity to the menu item.
func (s *orderService) DeleteOrder(ctx context.Context, principal models.Principal, id int) error {
	ctx, span := s.tracer.Start(ctx, "order.delete")
	defer span.End()
	span.SetAttributes(attribute.Int("order.id", id), attribute.Int("user.id", principal.ID))

	if id <= 0 {
		return s.reject(span, "delete", models.ErrInvalidOrderID)
	}

	var cancelled models.Order
	err := s.store.InTx(ctx, func(tx dal.Tx) error {
		current, err := s.lockActiveOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authorize(s.guard, principal, current, models.ErrOrderDelete); err != nil {
			return err
		}
		stock, err := s.ledger.Open(ctx, tx, current.MenuItemID)
		if err != nil {
			return err
		}
		if err := stock.Release(ctx, current.MenuItemID, current.Quantity); err != nil {
			return err
		}
		cancelled = current
		return tx.CancelOrder(ctx, id)
	})
	if err != nil {
		return s.reject(span, "delete", err)
	}

	span.SetStatus(codes.Ok, "order cancelled")
	s.logger.Info("order cancelled",
		zap.Int("order_id", cancelled.ID),
		zap.Int("menu_item_id", cancelled.MenuItemID),
		zap.Int("released", cancelled.Quantity),
	)
	return nil
}

func (s *orderService) lockActiveOrder(ctx context.Context, tx dal.Tx, id int) (models.Order, error) {
	order, err := tx.LockOrder(ctx, id)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return models.Order{}, models.ErrOrderNotFound
		}
		return models.Order{}, err
	}
	if !order.Active() {
		return models.Order{}, models.ErrOrderNotFound
	}
	return order, nil
}

// reject records err on the span and logs it. Domain failures are expected
// traffic and logged at info; anything else is an error.
func (s *orderService) reject(span trace.Span, op string, err error) error {
	spanError(span, err)
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		s.logger.Info("order rejected", zap.String("op", op), zap.String("reason", domainErr.Message))
	} else {
		s.logger.Error("order failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
