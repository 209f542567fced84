package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims the pricing service trusts. Subject carries the
// caller's user ID, which for borrowers is also their borrower ID.
type Claims struct {
	jwt.RegisteredClaims
	TenantID uuid.UUID `json:"tenant_id"`
	Roles    []string  `json:"roles"`
}

// Role constants
const (
	RoleAdmin       = "admin"
	RoleUnderwriter = "underwriter"
	RoleBorrower    = "borrower"
	RoleAPIClient   = "api_client"
)

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// IsStaff reports whether the caller may act for any borrower.
func (c Claims) IsStaff() bool {
	return c.HasRole(RoleAdmin) || c.HasRole(RoleUnderwriter) || c.HasRole(RoleAPIClient)
}

// BorrowerScope returns the borrower a non-staff caller is confined to, or ""
// for staff.
func (c Claims) BorrowerScope() string {
	if c.IsStaff() {
		return ""
	}
	return c.Subject
}

// CanActFor reports whether the caller may request or list quotes on behalf
// of borrowerID. Staff act for anyone; a borrower only for themselves.
func (c Claims) CanActFor(borrowerID string) bool {
	if c.IsStaff() {
		return true
	}
	return c.HasRole(RoleBorrower) && borrowerID != "" && c.Subject == borrowerID
}
