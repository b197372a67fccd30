package models

import "time"

// Profile is the display identity of an account. AuthUserID references an
// account in the auth store; ProfilePicID references a blob and is nil when
// no avatar was uploaded.
type Profile struct {
	ProfileID    int64
	AuthUserID   string
	Username     string
	FullName     string
	Bio          *string
	Role         string
	ProfilePicID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfilePatch carries the fields of a partial update; nil means unchanged.
type ProfilePatch struct {
	FullName *string
	Bio      *string
	Role     *string
}

// DefaultProfileRole is used when a profile is created without a role.
const DefaultProfileRole = "student"
