package helpers

import "github.com/golang-jwt/jwt/v5"

const (
	RoleCustomer    = "customer"
	RoleRideManager = "ride_manager"
	RoleAdmin       = "admin"
)

type CustomClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity handed to every core operation.
type Principal struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Principal) IsRideManager() bool {
	return p.Role == RoleRideManager
}

func (p *Principal) HasRole(role string) bool {
	return p.Role == role
}

func (p *Principal) IsOwner(userID string) bool {
	return p.UserID == userID
}

func (p *Principal) GetSafeRole() string {
	if p.Role == "" {
		return RoleCustomer
	}
	return p.Role
}
