package models

// StockLine reconciles one menu item's counter against the orders holding it.
// Consistent is false when QuantityAvailable + ActiveQuantity != Quantity.
type StockLine struct {
	MenuItemID        int  `json:"menu_item_id"`
	MenuID            int  `json:"menu_id"`
	MealID            int  `json:"meal_id"`
	Quantity          int  `json:"quantity"`
	QuantityAvailable int  `json:"quantity_available"`
	ActiveOrders      int  `json:"active_orders"`
	ActiveQuantity    int  `json:"active_quantity"`
	Consistent        bool `json:"consistent"`
}

func (l *StockLine) Reconcile() {
	l.Consistent = l.QuantityAvailable+l.ActiveQuantity == l.Quantity
}

type StockReport struct {
	Lines        []StockLine `json:"lines"`
	Inconsistent int         `json:"inconsistent"`
}
