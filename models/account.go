package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role represents a position in the agent hierarchy
type Role string

const (
	RoleSuperAdmin      Role = "superadmin"
	RoleAdmin           Role = "admin"
	RoleAreaCoordinator Role = "area_coordinator"
	RoleCoordinator     Role = "coordinator"
	RoleAgent           Role = "agent"
)

// Account represents a participant in the agent hierarchy with a balance
type Account struct {
	ID              int64           `db:"id" json:"id"`
	Username        string          `db:"username" json:"username"`
	FullName        string          `db:"full_name" json:"fullName"`
	Role            Role            `db:"role" json:"role"`
	ParentAccountID *int64          `db:"parent_account_id" json:"parentAccountId,omitempty"`
	CurrentBalance  decimal.Decimal `db:"current_balance" json:"currentBalance"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// CanResolveClaims reports whether the role may approve or reject claims
func (r Role) CanResolveClaims() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// CanInputResults reports whether the role may submit draw results
func (r Role) CanInputResults() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// CanEditLimits reports whether the role may change bet limits
func (r Role) CanEditLimits() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// CanSellTickets reports whether the role may place bets on behalf of players
func (r Role) CanSellTickets() bool {
	return r == RoleAgent || r == RoleCoordinator || r == RoleAreaCoordinator
}

// IsValid reports whether the role is one of the known hierarchy roles
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleAreaCoordinator, RoleCoordinator, RoleAgent:
		return true
	}
	return false
}
