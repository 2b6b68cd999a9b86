package models

import (
	"encoding/json"
	"time"
)

type Meal struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	ImagePath string    `json:"img_path,omitempty"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MenuCategory string

const (
	MenuBreakfast MenuCategory = "BREAKFAST"
	MenuLunch     MenuCategory = "LUNCH"
	MenuSupper    MenuCategory = "SUPPER"
)

func (c MenuCategory) Valid() bool {
	switch c {
	case MenuBreakfast, MenuLunch, MenuSupper:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of a menu's service day.
const DateLayout = "2006-01-02"

type Menu struct {
	ID        int          `json:"id"`
	Category  MenuCategory `json:"category"`
	Day       time.Time    `json:"-"`
	CatererID int          `json:"caterer_id"`
	CreatedAt time.Time    `json:"created_at"`
}

func (m Menu) MarshalJSON() ([]byte, error) {
	type menu Menu
	return json.Marshal(struct {
		menu
		Day string `json:"day"`
	}{menu(m), m.DayString()})
}

// DayString is the service day in DateLayout.
func (m Menu) DayString() string {
	return m.Day.Format(DateLayout)
}

// ExpiredAt reports whether the menu's service day is strictly before the
// calendar day of now. Both are compared as UTC dates.
func (m Menu) ExpiredAt(now time.Time) bool {
	return Today(m.Day).Before(Today(now))
}

// Today truncates t to midnight UTC.
func Today(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// MenuItem is one meal offered on one menu. Quantity is the stock the item
// was created with; QuantityAvailable is what is left after reservations.
type MenuItem struct {
	ID                int       `json:"id"`
	MenuID            int       `json:"menu_id"`
	MealID            int       `json:"meal_id"`
	Quantity          int       `json:"quantity"`
	QuantityAvailable int       `json:"quantity_available"`
	CreatedAt         time.Time `json:"created_at"`
}

// Reserved is the quantity currently held by live orders.
func (mi MenuItem) Reserved() int {
	return mi.Quantity - mi.QuantityAvailable
}

type CreateMenuRequest struct {
	Category MenuCategory `json:"category"`
	Day      string       `json:"day,omitempty"`
}

type CreateMenuItemRequest struct {
	MenuID   int `json:"menu_id"`
	MealID   int `json:"meal_id"`
	Quantity int `json:"quantity"`
}

// Availability answers a stock check for one menu item.
type Availability struct {
	MenuItemID        int  `json:"menu_item_id"`
	Requested         int  `json:"requested"`
	QuantityAvailable int  `json:"quantity_available"`
	Available         bool `json:"available"`
}
