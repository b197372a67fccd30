// Package models defines the entities persisted by the relational stores.
// Wire representations live in httpapi and are mapped explicitly.
package models

import "time"

// Role ids of the accounts table.
const (
	AdminRoleID = 1
	// DefaultRoleID is assigned to accounts registered without a role.
	DefaultRoleID = 2
)

type Account struct {
	ID             int64
	EmailAddress   string
	Username       string
	HashedPassword string
	IsActive       bool
	RoleID         int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
