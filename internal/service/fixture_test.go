package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"bookameal/internal/clock"
	"bookameal/internal/dal"
	"bookameal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

var (
	customerA = models.Principal{ID: 10, Role: models.RoleCustomer}
	customerB = models.Principal{ID: 11, Role: models.RoleCustomer}
	caterer   = models.Principal{ID: 1, Role: models.RoleCaterer}
)

var serviceDay = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	clock  *clock.FakeClock
	store  *dal.Memory
	spans  *tracetest.SpanRecorder
	ledger *Ledger
	orders OrderService
	menus  MenuService
	meals  MealService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := clock.Fixed(serviceDay.Add(9 * time.Hour))
	store := dal.NewMemory(c)
	spans := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")
	ledger := NewLedger(c, tracer)

	return &fixture{
		t:      t,
		ctx:    context.Background(),
		clock:  c,
		store:  store,
		spans:  spans,
		ledger: ledger,
		orders: NewOrderService(store, store, ledger, OwnerGuard{}, zaptest.NewLogger(t), tracer),
		menus:  NewMenuService(store, store, store, c),
		meals:  NewMealService(store),
	}
}

// menuItem publishes a menu for day with one meal of the given stock.
func (f *fixture) menuItem(day time.Time, stock int) models.MenuItem {
	f.t.Helper()
	meal, err := f.meals.CreateMeal(f.ctx, caterer, models.Meal{Name: "pilau", Cost: 350})
	require.NoError(f.t, err)
	menu, err := f.menus.CreateMenu(f.ctx, caterer, models.CreateMenuRequest{
		Category: models.MenuLunch,
		Day:      day.Format(models.DateLayout),
	})
	require.NoError(f.t, err)
	item, err := f.menus.CreateMenuItem(f.ctx, caterer, models.CreateMenuItemRequest{
		MenuID:   menu.ID,
		MealID:   meal.ID,
		Quantity: stock,
	})
	require.NoError(f.t, err)
	return item
}

func (f *fixture) available(id int) int {
	f.t.Helper()
	item, err := f.store.GetMenuItemByID(f.ctx, id)
	require.NoError(f.t, err)
	return item.QuantityAvailable
}

func (f *fixture) order(p models.Principal, menuItemID, quantity int) (models.Order, error) {
	return f.orders.CreateOrder(f.ctx, p, models.CreateOrderRequest{
		MenuItemID: intPtr(menuItemID),
		Quantity:   intPtr(quantity),
	})
}

// reserved sums the quantity of every active order on a menu item.
func (f *fixture) reserved(id int) int {
	f.t.Helper()
	lines, err := f.store.GetStockReport(f.ctx)
	require.NoError(f.t, err)
	for _, line := range lines {
		if line.MenuItemID == id {
			return line.ActiveQuantity
		}
	}
	f.t.Fatalf("menu item %d missing from stock report", id)
	return 0
}

// churnOrders runs workers customers concurrently, each doing ops random
// creates, quantity changes, moves between items and deletes on its own
// orders. Only a stock shortfall is an acceptable failure.
func churnOrders(t *testing.T, ctx context.Context, orders OrderService, items []int, workers, ops int) {
	t.Helper()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			p := models.Principal{ID: 200 + w, Role: models.RoleCustomer}
			var mine []models.Order

			for i := 0; i < ops; i++ {
				if len(mine) == 0 || rng.Intn(4) == 0 {
					order, err := orders.CreateOrder(ctx, p, models.CreateOrderRequest{
						MenuItemID: intPtr(items[rng.Intn(len(items))]),
						Quantity:   intPtr(1 + rng.Intn(3)),
					})
					if err == nil {
						mine = append(mine, order)
					} else {
						assert.ErrorIs(t, err, models.ErrInsufficientStock)
					}
					continue
				}

				k := rng.Intn(len(mine))
				var req models.UpdateOrderRequest
				switch rng.Intn(3) {
				case 0:
					req.Quantity = intPtr(1 + rng.Intn(4))
				case 1:
					other := items[0]
					if mine[k].MenuItemID == other {
						other = items[1]
					}
					req.MenuItemID = intPtr(other)
				default:
					if assert.NoError(t, orders.DeleteOrder(ctx, p, mine[k].ID)) {
						mine = append(mine[:k], mine[k+1:]...)
					}
					continue
				}
				updated, err := orders.UpdateOrder(ctx, p, mine[k].ID, req)
				if err == nil {
					mine[k] = updated
				} else {
					assert.ErrorIs(t, err, models.ErrInsufficientStock)
				}
			}
		}(w)
	}
	wg.Wait()
}

func intPtr(v int) *int { return &v }
