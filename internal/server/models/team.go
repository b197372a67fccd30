package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessCodeLength is the number of characters of a team join code.
const AccessCodeLength = 8

// Team is a course. TeamPic is the blob id of the cover image.
type Team struct {
	TeamID      int64
	PublicID    uuid.UUID
	ProfessorID uuid.UUID
	Name        string
	Description *string
	TeamPic     *string
	AccessCode  string
	CreatedAt   time.Time
}

type TeamPatch struct {
	Name        *string
	Description *string
}

// Membership joins a user to a team. TeamPublicID is filled on reads.
type Membership struct {
	MembershipID int64
	PublicID     uuid.UUID
	TeamID       int64
	TeamPublicID uuid.UUID
	UserID       uuid.UUID
	JoinedAt     time.Time
}
