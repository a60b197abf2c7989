package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAccountant Role = "ACCOUNTANT"
	RoleViewer     Role = "VIEWER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	OrgID  uuid.UUID
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsAccountant() bool {
	return p.Role == RoleAccountant
}

func (p Principal) IsViewer() bool {
	return p.Role == RoleViewer
}

// CanIssue reports whether the principal may issue or void invoices.
func (p Principal) CanIssue() bool {
	return p.Role == RoleAdmin || p.Role == RoleAccountant
}
