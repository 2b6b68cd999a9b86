package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookameal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)

	order, err := f.order(customerA, item.ID, 3)
	require.NoError(t, err)
	assert.Positive(t, order.ID)
	assert.Equal(t, customerA.ID, order.UserID)
	assert.Equal(t, models.OrderActive, order.Status)
	assert.Equal(t, 2, f.available(item.ID))
	assert.Equal(t, 3, f.reserved(item.ID))
}

func TestCreateOrderDefaultsQuantityToOne(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)

	order, err := f.orders.CreateOrder(f.ctx, customerA, models.CreateOrderRequest{MenuItemID: intPtr(item.ID)})
	require.NoError(t, err)
	assert.Equal(t, 1, order.Quantity)
	assert.Equal(t, 4, f.available(item.ID))
}

func TestCreateOrderRejections(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 2)
	stale := f.menuItem(serviceDay.AddDate(0, 0, -1), 2)

	tests := []struct {
		name    string
		req     models.CreateOrderRequest
		kind    error
		message string
	}{
		{
			name: "no menu item",
			req:  models.CreateOrderRequest{Quantity: intPtr(1)},
			kind: models.ErrValidation,
		},
		{
			name:    "zero quantity",
			req:     models.CreateOrderRequest{MenuItemID: intPtr(item.ID), Quantity: intPtr(0)},
			kind:    models.ErrInvalidQuantity,
			message: "Quantity must be positive",
		},
		{
			name: "negative quantity",
			req:  models.CreateOrderRequest{MenuItemID: intPtr(item.ID), Quantity: intPtr(-3)},
			kind: models.ErrInvalidQuantity,
		},
		{
			name:    "unknown menu item",
			req:     models.CreateOrderRequest{MenuItemID: intPtr(404), Quantity: intPtr(1)},
			kind:    models.ErrNotFound,
			message: "No menu item found for that id",
		},
		{
			name:    "expired menu",
			req:     models.CreateOrderRequest{MenuItemID: intPtr(stale.ID), Quantity: intPtr(1)},
			kind:    models.ErrMenuExpired,
			message: "This menu is expired",
		},
		{
			name:    "more than available",
			req:     models.CreateOrderRequest{MenuItemID: intPtr(item.ID), Quantity: intPtr(3)},
			kind:    models.ErrInsufficientStock,
			message: "Only 2 menu items are available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(f.ctx, customerA, tt.req)
			require.ErrorIs(t, err, tt.kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}

	assert.Equal(t, 2, f.available(item.ID))
	assert.Equal(t, 2, f.available(stale.ID))
	orders, err := f.orders.ListOrders(f.ctx, customerA)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderExpiresAtMidnight(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)

	f.clock.Set(serviceDay.Add(24*time.Hour - time.Nanosecond))
	_, err := f.order(customerA, item.ID, 1)
	require.NoError(t, err)

	f.clock.Set(serviceDay.Add(24 * time.Hour))
	_, err = f.order(customerA, item.ID, 1)
	require.ErrorIs(t, err, models.ErrMenuExpired)
	assert.Equal(t, 4, f.available(item.ID))
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 1)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			p := models.Principal{ID: 100 + user, Role: models.RoleCustomer}
			_, err := f.order(p, item.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, models.ErrInsufficientStock)
			refused++
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, refused)
	assert.Equal(t, 0, f.available(item.ID))
	assert.Equal(t, 1, f.reserved(item.ID))
}

func TestConcurrentOrdersConserveStock(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 10)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			p := models.Principal{ID: 100 + user, Role: models.RoleCustomer}
			order, err := f.order(p, item.ID, 1+user%3)
			if err != nil {
				return
			}
			if user%2 == 0 {
				assert.NoError(t, f.orders.DeleteOrder(f.ctx, p, order.ID))
			}
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, f.available(item.ID), 0)
	assert.Equal(t, 10, f.available(item.ID)+f.reserved(item.ID))
}

func TestConcurrentOpposingMoves(t *testing.T) {
	f := newFixture(t)
	a := f.menuItem(serviceDay, 10)
	b := f.menuItem(serviceDay, 10)

	first, err := f.order(customerA, a.ID, 1)
	require.NoError(t, err)
	second, err := f.order(customerB, b.ID, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(f.ctx, 5*time.Second)
	defer cancel()

	const moves = 300
	shuttle := func(p models.Principal, orderID int, targets [2]int) {
		for i := 0; i < moves; i++ {
			_, err := f.orders.UpdateOrder(ctx, p, orderID, models.UpdateOrderRequest{MenuItemID: intPtr(targets[i%2])})
			if !assert.NoError(t, err, "move %d of order %d", i, orderID) {
				return
			}
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		shuttle(customerA, first.ID, [2]int{b.ID, a.ID})
	}()
	go func() {
		defer wg.Done()
		shuttle(customerB, second.ID, [2]int{a.ID, b.ID})
	}()
	wg.Wait()
	require.NoError(t, ctx.Err(), "moves did not finish before the deadline")

	got, err := f.orders.GetOrder(f.ctx, customerA, first.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.MenuItemID)
	got, err = f.orders.GetOrder(f.ctx, customerB, second.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.MenuItemID)

	for _, id := range []int{a.ID, b.ID} {
		assert.Equal(t, 9, f.available(id))
		assert.Equal(t, 1, f.reserved(id))
	}
}

func TestConcurrentMixedOperationsConserveStock(t *testing.T) {
	f := newFixture(t)
	const stock = 40
	items := []int{f.menuItem(serviceDay, stock).ID, f.menuItem(serviceDay, stock).ID}

	ctx, cancel := context.WithTimeout(f.ctx, 10*time.Second)
	defer cancel()

	churnOrders(t, ctx, f.orders, items, 16, 200)
	require.NoError(t, ctx.Err())

	for _, id := range items {
		available := f.available(id)
		assert.GreaterOrEqual(t, available, 0)
		assert.Equal(t, stock, available+f.reserved(id), "menu item %d", id)
	}
	lines, err := f.store.GetStockReport(f.ctx)
	require.NoError(t, err)
	for _, line := range lines {
		assert.True(t, line.Consistent, "menu item %d", line.MenuItemID)
	}
}

func TestGetAndListOrders(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 10)

	first, err := f.order(customerA, item.ID, 1)
	require.NoError(t, err)
	second, err := f.order(customerA, item.ID, 2)
	require.NoError(t, err)
	_, err = f.order(customerB, item.ID, 1)
	require.NoError(t, err)

	got, err := f.orders.GetOrder(f.ctx, customerA, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, f.orders.DeleteOrder(f.ctx, customerA, first.ID))

	orders, err := f.orders.ListOrders(f.ctx, customerA)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, second.ID, orders[0].ID)

	_, err = f.orders.GetOrder(f.ctx, customerA, first.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.orders.GetOrder(f.ctx, customerA, 0)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateOrderQuantity(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 2)

	order, err := f.order(customerA, item.ID, 1)
	require.NoError(t, err)

	updated, err := f.orders.UpdateOrder(f.ctx, customerA, order.ID, models.UpdateOrderRequest{Quantity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, 0, f.available(item.ID))

	_, err = f.orders.UpdateOrder(f.ctx, customerA, order.ID, models.UpdateOrderRequest{Quantity: intPtr(4)})
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, "Only 0 menu items are available", err.Error())

	stored, err := f.orders.GetOrder(f.ctx, customerA, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
	assert.Equal(t, 0, f.available(item.ID))
}

func TestUpdateOrderRejections(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)
	stale := f.menuItem(serviceDay.AddDate(0, 0, -1), 5)

	order, err := f.order(customerA, item.ID, 2)
	require.NoError(t, err)

	tests := []struct {
		name      string
		principal models.Principal
		id        int
		req       models.UpdateOrderRequest
		kind      error
		message   string
	}{
		{name: "missing order", principal: customerA, id: 999, req: models.UpdateOrderRequest{Quantity: intPtr(1)}, kind: models.ErrNotFound},
		{name: "someone else's order", principal: customerB, id: order.ID, req: models.UpdateOrderRequest{Quantity: intPtr(1)}, kind: models.ErrUnauthorized, message: "This user cannot edit this order"},
		{name: "caterer", principal: caterer, id: order.ID, req: models.UpdateOrderRequest{Quantity: intPtr(1)}, kind: models.ErrUnauthorized},
		{name: "empty payload", principal: customerA, id: order.ID, kind: models.ErrValidation},
		{name: "zero quantity", principal: customerA, id: order.ID, req: models.UpdateOrderRequest{Quantity: intPtr(0)}, kind: models.ErrInvalidQuantity},
		{name: "unknown menu item", principal: customerA, id: order.ID, req: models.UpdateOrderRequest{MenuItemID: intPtr(404)}, kind: models.ErrNotFound, message: "No menu item found for that id"},
		{name: "move to expired menu", principal: customerA, id: order.ID, req: models.UpdateOrderRequest{MenuItemID: intPtr(stale.ID)}, kind: models.ErrMenuExpired},
		{name: "unknown menu item with quantity", principal: customerA, id: order.ID, req: models.UpdateOrderRequest{MenuItemID: intPtr(stale.ID + 100), Quantity: intPtr(9)}, kind: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.UpdateOrder(f.ctx, tt.principal, tt.id, tt.req)
			require.ErrorIs(t, err, tt.kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}

	assert.Equal(t, 3, f.available(item.ID))
	assert.Equal(t, 5, f.available(stale.ID))
	stored, err := f.orders.GetOrder(f.ctx, customerA, order.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, stored.MenuItemID)
	assert.Equal(t, 2, stored.Quantity)
}

func TestUpdateOrderOnExpiredMenu(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)

	order, err := f.order(customerA, item.ID, 3)
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.orders.UpdateOrder(f.ctx, customerA, order.ID, models.UpdateOrderRequest{Quantity: intPtr(1)})
	require.ErrorIs(t, err, models.ErrMenuExpired)
	assert.Equal(t, 2, f.available(item.ID))
}

func TestUpdateOrderMovesBetweenMenuItems(t *testing.T) {
	f := newFixture(t)
	from := f.menuItem(serviceDay, 5)
	to := f.menuItem(serviceDay, 2)

	order, err := f.order(customerA, from.ID, 3)
	require.NoError(t, err)

	_, err = f.orders.UpdateOrder(f.ctx, customerA, order.ID, models.UpdateOrderRequest{MenuItemID: intPtr(to.ID)})
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 2, f.available(from.ID))
	assert.Equal(t, 2, f.available(to.ID))

	moved, err := f.orders.UpdateOrder(f.ctx, customerA, order.ID, models.UpdateOrderRequest{
		MenuItemID: intPtr(to.ID),
		Quantity:   intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.MenuItemID)
	assert.Equal(t, 5, f.available(from.ID))
	assert.Equal(t, 0, f.available(to.ID))
	assert.Equal(t, 2, f.reserved(to.ID))
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)

	order, err := f.order(customerA, item.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 1, f.available(item.ID))

	err = f.orders.DeleteOrder(f.ctx, customerB, order.ID)
	require.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Equal(t, "This user cannot delete this order", err.Error())
	assert.Equal(t, 1, f.available(item.ID))

	require.NoError(t, f.orders.DeleteOrder(f.ctx, customerA, order.ID))
	assert.Equal(t, 5, f.available(item.ID))

	err = f.orders.DeleteOrder(f.ctx, customerA, order.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 5, f.available(item.ID))

	_, err = f.orders.UpdateOrder(f.ctx, customerA, order.ID, models.UpdateOrderRequest{Quantity: intPtr(1)})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetOrderOwnerOnly(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)

	order, err := f.order(customerA, item.ID, 1)
	require.NoError(t, err)

	for _, p := range []models.Principal{customerB, caterer, {}} {
		_, err := f.orders.GetOrder(f.ctx, p, order.ID)
		require.ErrorIs(t, err, models.ErrUnauthorized)
		assert.Equal(t, "Unauthorized access", err.Error())
	}
}

func TestOrderLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	item := f.menuItem(serviceDay, 5)

	a, err := f.order(customerA, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, f.available(item.ID))

	_, err = f.order(customerB, item.ID, 3)
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, "Only 2 menu items are available", err.Error())

	_, err = f.orders.UpdateOrder(f.ctx, customerA, a.ID, models.UpdateOrderRequest{Quantity: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 4, f.available(item.ID))

	_, err = f.order(customerB, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, f.available(item.ID))
	assert.Equal(t, 4, f.reserved(item.ID))
}
