package dal

import (
	"context"
	"errors"

	"bookameal/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInUse is returned when a catalog row cannot be deleted because other
	// rows still reference it.
	ErrInUse = errors.New("record is still referenced")
	// ErrOutOfRange is returned when a menu item counter would leave
	// [0, Quantity].
	ErrOutOfRange = errors.New("quantity available out of range")
)

// Store runs a unit of admission work. Every lock taken through the Tx is
// held until fn returns; writes become visible only if fn returns nil.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the view of the catalog an admission works against.
//
// Lock order is fixed: at most one LockOrder call, then at most one
// LockMenuItems call carrying every menu item the admission touches.
type Tx interface {
	// LockOrder loads an order and holds it against concurrent admissions.
	LockOrder(ctx context.Context, id int) (models.Order, error)
	// LockMenuItems loads and locks the given menu items in ascending id
	// order. Ids that do not exist are absent from the result.
	LockMenuItems(ctx context.Context, ids ...int) (map[int]models.MenuItem, error)
	GetMenu(ctx context.Context, id int) (models.Menu, error)
	// SetQuantityAvailable overwrites a locked menu item's counter. Values
	// outside [0, Quantity] are rejected.
	SetQuantityAvailable(ctx context.Context, menuItemID, quantity int) error
	InsertOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	CancelOrder(ctx context.Context, id int) error
}

type MealRepository interface {
	CreateMeal(ctx context.Context, meal models.Meal) (models.Meal, error)
	GetMealByID(ctx context.Context, id int) (models.Meal, error)
	GetAllMeals(ctx context.Context) ([]models.Meal, error)
	UpdateMeal(ctx context.Context, id int, meal models.Meal) (models.Meal, error)
	DeleteMeal(ctx context.Context, id int) error
}

type MenuRepository interface {
	CreateMenu(ctx context.Context, menu models.Menu) (models.Menu, error)
	GetMenuByID(ctx context.Context, id int) (models.Menu, error)
	GetAllMenus(ctx context.Context) ([]models.Menu, error)
	DeleteMenu(ctx context.Context, id int) error
}

type MenuItemRepository interface {
	CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	GetMenuItemByID(ctx context.Context, id int) (models.MenuItem, error)
	GetMenuItemsByMenu(ctx context.Context, menuID int) ([]models.MenuItem, error)
}

type OrderRepository interface {
	GetOrderByID(ctx context.Context, id int) (models.Order, error)
	// GetOrdersByUser returns the user's active orders ordered by id.
	GetOrdersByUser(ctx context.Context, userID int) ([]models.Order, error)
}

type ReportRepository interface {
	GetStockReport(ctx context.Context) ([]models.StockLine, error)
}

// Catalog bundles every repository a backend provides.
type Catalog interface {
	Store
	MealRepository
	MenuRepository
	MenuItemRepository
	OrderRepository
	ReportRepository
}
