package models

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers match on these with errors.Is and map them to HTTP
// status codes.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrMenuExpired       = errors.New("menu expired")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

var (
	ErrInvalidOrderID    = NewError(ErrValidation, "invalid order ID")
	ErrInvalidMenuItemID = NewError(ErrValidation, "invalid menu item id")
	ErrMissingMenuItemID = NewError(ErrValidation, "menu_item_id is required")
	ErrEmptyUpdate       = NewError(ErrValidation, "menu_item_id or quantity is required")
	ErrNonPositiveQty    = NewError(ErrInvalidQuantity, "Quantity must be positive")
	ErrExpired           = NewError(ErrMenuExpired, "This menu is expired")
	ErrOrderNotFound     = NewError(ErrNotFound, "Order not found")
	ErrOrderAccess       = NewError(ErrUnauthorized, "Unauthorized access")
	ErrOrderEdit         = NewError(ErrUnauthorized, "This user cannot edit this order")
	ErrOrderDelete       = NewError(ErrUnauthorized, "This user cannot delete this order")
	ErrMissingPrincipal  = NewError(ErrUnauthorized, "Missing or invalid credentials")
	ErrCatererOnly       = NewError(ErrForbidden, "Only caterers can manage the catalog")

	ErrInvalidMealName     = NewError(ErrValidation, "meal name is required")
	ErrInvalidMealCost     = NewError(ErrValidation, "meal cost must not be negative")
	ErrInvalidMenuCategory = NewError(ErrValidation, "menu category must be one of BREAKFAST, LUNCH, SUPPER")
	ErrInvalidStock        = NewError(ErrValidation, "menu item quantity must not be negative")
	ErrInvalidMenuDay      = NewError(ErrValidation, "menu day must be formatted as YYYY-MM-DD")
	ErrMenuOwner           = NewError(ErrForbidden, "This caterer does not own this menu")
	ErrMealInUse           = NewError(ErrValidation, "Meal is offered on a menu and cannot be deleted")
	ErrMenuInUse           = NewError(ErrValidation, "Menu still has items and cannot be deleted")
)

// ErrStockCeiling reports a release that would lift a menu item's available
// quantity above its original stock. It indicates a double release and is
// never shown to clients as a domain failure.
var ErrStockCeiling = errors.New("release exceeds original stock")

// Error is a domain failure with a message meant to be shown to the caller
// verbatim. Kind is one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Is lets two *Error values with the same kind and message compare equal, so
// the predeclared errors above work with errors.Is after being re-wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// NotFoundf builds a not-found error for the named entity.
func NotFoundf(format string, args ...any) *Error {
	return Errorf(ErrNotFound, format, args...)
}
