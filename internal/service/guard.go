package service

import (
	"bookameal/internal/models"
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

// Guard decides whether a principal may act on an order.
type Guard interface {
	Decide(principal models.Principal, order models.Order) Decision
}

// OwnerGuard allows only the order's owner. Roles grant no override.
type OwnerGuard struct{}

func (OwnerGuard) Decide(principal models.Principal, order models.Order) Decision {
	if principal.ID > 0 && principal.ID == order.UserID {
		return Allow
	}
	return Deny
}

// authorize returns denial unless guard allows principal to act on order.
func authorize(guard Guard, principal models.Principal, order models.Order, denial error) error {
	if guard.Decide(principal, order) != Allow {
		return denial
	}
	return nil
}

// RequireCaterer guards catalog writes.
func RequireCaterer(principal models.Principal) error {
	if !principal.IsCaterer() {
		return models.ErrCatererOnly
	}
	return nil
}
