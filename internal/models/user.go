package models

type Role string

const (
	RoleCustomer Role = "customer"
	RoleCaterer  Role = "caterer"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleCaterer
}

// Principal is the authenticated actor of a request. Identity is established
// upstream; this service only compares ids and checks roles.
type Principal struct {
	ID   int  `json:"id"`
	Role Role `json:"role"`
}

func (p Principal) IsCaterer() bool {
	return p.Role == RoleCaterer
}
