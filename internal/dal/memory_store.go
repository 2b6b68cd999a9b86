package dal

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"bookameal/internal/clock"
	"bookameal/internal/models"
)

// Memory is an in-process Catalog. Admissions on the same menu item are
// serialised through a per-key lock table; writes are staged in the
// transaction and applied on commit.
type Memory struct {
	clock clock.Clock
	locks *lockTable

	mu     sync.RWMutex
	meals  map[int]models.Meal
	menus  map[int]models.Menu
	items  map[int]models.MenuItem
	orders map[int]models.Order
	seq    map[string]int
}

var _ Catalog = (*Memory)(nil)

func NewMemory(c clock.Clock) *Memory {
	return &Memory{
		clock:  c,
		locks:  newLockTable(),
		meals:  make(map[int]models.Meal),
		menus:  make(map[int]models.Menu),
		items:  make(map[int]models.MenuItem),
		orders: make(map[int]models.Order),
		seq:    make(map[string]int),
	}
}

// nextID must be called with mu held for writing.
func (m *Memory) nextID(table string) int {
	m.seq[table]++
	return m.seq[table]
}

func (m *Memory) CreateMeal(ctx context.Context, meal models.Meal) (models.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	meal.ID = m.nextID("meals")
	meal.CreatedAt, meal.UpdatedAt = now, now
	m.meals[meal.ID] = meal
	return meal, nil
}

func (m *Memory) GetMealByID(ctx context.Context, id int) (models.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meal, ok := m.meals[id]
	if !ok {
		return models.Meal{}, fmt.Errorf("meal %d: %w", id, ErrNotFound)
	}
	return meal, nil
}

func (m *Memory) GetAllMeals(ctx context.Context) ([]models.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meals := make([]models.Meal, 0, len(m.meals))
	for _, meal := range m.meals {
		meals = append(meals, meal)
	}
	sort.Slice(meals, func(i, j int) bool { return meals[i].ID < meals[j].ID })
	return meals, nil
}

func (m *Memory) UpdateMeal(ctx context.Context, id int, meal models.Meal) (models.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.meals[id]
	if !ok {
		return models.Meal{}, fmt.Errorf("meal %d: %w", id, ErrNotFound)
	}
	meal.ID = id
	meal.CreatedAt = current.CreatedAt
	meal.UpdatedAt = m.clock.Now()
	m.meals[id] = meal
	return meal, nil
}

func (m *Memory) DeleteMeal(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meals[id]; !ok {
		return fmt.Errorf("meal %d: %w", id, ErrNotFound)
	}
	for _, item := range m.items {
		if item.MealID == id {
			return fmt.Errorf("meal %d: %w", id, ErrInUse)
		}
	}
	delete(m.meals, id)
	return nil
}

func (m *Memory) CreateMenu(ctx context.Context, menu models.Menu) (models.Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	menu.ID = m.nextID("menus")
	menu.Day = models.Today(menu.Day)
	menu.CreatedAt = m.clock.Now()
	m.menus[menu.ID] = menu
	return menu, nil
}

func (m *Memory) GetMenuByID(ctx context.Context, id int) (models.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.menuLocked(id)
}

func (m *Memory) menuLocked(id int) (models.Menu, error) {
	menu, ok := m.menus[id]
	if !ok {
		return models.Menu{}, fmt.Errorf("menu %d: %w", id, ErrNotFound)
	}
	return menu, nil
}

func (m *Memory) GetAllMenus(ctx context.Context) ([]models.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	menus := make([]models.Menu, 0, len(m.menus))
	for _, menu := range m.menus {
		menus = append(menus, menu)
	}
	sort.Slice(menus, func(i, j int) bool {
		if !menus[i].Day.Equal(menus[j].Day) {
			return menus[i].Day.After(menus[j].Day)
		}
		return menus[i].ID < menus[j].ID
	})
	return menus, nil
}

func (m *Memory) DeleteMenu(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menus[id]; !ok {
		return fmt.Errorf("menu %d: %w", id, ErrNotFound)
	}
	for _, item := range m.items {
		if item.MenuID == id {
			return fmt.Errorf("menu %d: %w", id, ErrInUse)
		}
	}
	delete(m.menus, id)
	return nil
}

func (m *Memory) CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menus[item.MenuID]; !ok {
		return models.MenuItem{}, fmt.Errorf("menu %d: %w", item.MenuID, ErrNotFound)
	}
	if _, ok := m.meals[item.MealID]; !ok {
		return models.MenuItem{}, fmt.Errorf("meal %d: %w", item.MealID, ErrNotFound)
	}
	item.ID = m.nextID("menu_items")
	item.QuantityAvailable = item.Quantity
	item.CreatedAt = m.clock.Now()
	m.items[item.ID] = item
	return item, nil
}

func (m *Memory) GetMenuItemByID(ctx context.Context, id int) (models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

func (m *Memory) GetMenuItemsByMenu(ctx context.Context, menuID int) ([]models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := []models.MenuItem{}
	for _, item := range m.items {
		if item.MenuID == menuID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *Memory) GetOrderByID(ctx context.Context, id int) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return models.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return order, nil
}

func (m *Memory) GetOrdersByUser(ctx context.Context, userID int) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := []models.Order{}
	for _, order := range m.orders {
		if order.UserID == userID && order.Active() {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (m *Memory) GetStockReport(ctx context.Context) ([]models.StockLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byItem := make(map[int]*models.StockLine, len(m.items))
	for _, item := range m.items {
		byItem[item.ID] = &models.StockLine{
			MenuItemID:        item.ID,
			MenuID:            item.MenuID,
			MealID:            item.MealID,
			Quantity:          item.Quantity,
			QuantityAvailable: item.QuantityAvailable,
		}
	}
	for _, order := range m.orders {
		line, ok := byItem[order.MenuItemID]
		if !ok || !order.Active() {
			continue
		}
		line.ActiveOrders++
		line.ActiveQuantity += order.Quantity
	}

	lines := make([]models.StockLine, 0, len(byItem))
	for _, line := range byItem {
		line.Reconcile()
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].MenuItemID < lines[j].MenuItemID })
	return lines, nil
}

func (m *Memory) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memTx{
		store:      m,
		lockedItem: make(map[int]bool),
		quantities: make(map[int]int),
		orders:     make(map[int]models.Order),
	}
	defer tx.unlock()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	store    *Memory
	releases []func()

	lockedItem  map[int]bool
	lockedOrder bool
	quantities  map[int]int
	orders      map[int]models.Order
}

func (t *memTx) lock(ctx context.Context, key string) error {
	release, err := t.store.locks.acquire(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", key, err)
	}
	t.releases = append(t.releases, release)
	return nil
}

func (t *memTx) unlock() {
	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
	t.releases = nil
}

func (t *memTx) commit() {
	m := t.store
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, qty := range t.quantities {
		item := m.items[id]
		item.QuantityAvailable = qty
		m.items[id] = item
	}
	for id, order := range t.orders {
		m.orders[id] = order
	}
}

func (t *memTx) LockOrder(ctx context.Context, id int) (models.Order, error) {
	if t.lockedOrder || len(t.lockedItem) > 0 {
		return models.Order{}, fmt.Errorf("lock order %d: out of order", id)
	}
	if err := t.lock(ctx, "order:"+strconv.Itoa(id)); err != nil {
		return models.Order{}, err
	}
	t.lockedOrder = true
	return t.store.GetOrderByID(ctx, id)
}

func (t *memTx) LockMenuItems(ctx context.Context, ids ...int) (map[int]models.MenuItem, error) {
	if len(t.lockedItem) > 0 {
		return nil, fmt.Errorf("lock menu items: already locked")
	}
	keys := uniqueSorted(ids)
	for _, id := range keys {
		if err := t.lock(ctx, "menu_item:"+strconv.Itoa(id)); err != nil {
			return nil, err
		}
		t.lockedItem[id] = true
	}

	m := t.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make(map[int]models.MenuItem, len(keys))
	for _, id := range keys {
		if item, ok := m.items[id]; ok {
			items[id] = item
		}
	}
	return items, nil
}

func (t *memTx) GetMenu(ctx context.Context, id int) (models.Menu, error) {
	return t.store.GetMenuByID(ctx, id)
}

func (t *memTx) SetQuantityAvailable(ctx context.Context, menuItemID, quantity int) error {
	if !t.lockedItem[menuItemID] {
		return fmt.Errorf("menu item %d is not locked", menuItemID)
	}
	item, err := t.store.GetMenuItemByID(ctx, menuItemID)
	if err != nil {
		return err
	}
	if quantity < 0 || quantity > item.Quantity {
		return fmt.Errorf("menu item %d quantity available %d: %w", menuItemID, quantity, ErrOutOfRange)
	}
	t.quantities[menuItemID] = quantity
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, order *models.Order) error {
	m := t.store
	m.mu.Lock()
	order.ID = m.nextID("orders")
	m.mu.Unlock()

	now := m.clock.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	t.orders[order.ID] = *order
	return nil
}

func (t *memTx) UpdateOrder(ctx context.Context, order *models.Order) error {
	current, err := t.current(ctx, order.ID)
	if err != nil {
		return err
	}
	current.MenuItemID = order.MenuItemID
	current.Quantity = order.Quantity
	current.UpdatedAt = t.store.clock.Now()
	t.orders[order.ID] = current
	order.UpdatedAt = current.UpdatedAt
	return nil
}

func (t *memTx) CancelOrder(ctx context.Context, id int) error {
	current, err := t.current(ctx, id)
	if err != nil {
		return err
	}
	current.Status = models.OrderCancelled
	current.UpdatedAt = t.store.clock.Now()
	t.orders[id] = current
	return nil
}

func (t *memTx) current(ctx context.Context, id int) (models.Order, error) {
	if order, ok := t.orders[id]; ok {
		return order, nil
	}
	return t.store.GetOrderByID(ctx, id)
}
