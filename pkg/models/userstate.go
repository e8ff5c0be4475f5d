package models

import "time"

// UserStatus is the per-user consumption status of an artifact.
type UserStatus string

const (
	StatusDropped  UserStatus = "dropped"
	StatusFinished UserStatus = "finished"
	StatusOngoing  UserStatus = "ongoing"
	StatusOnHold   UserStatus = "onhold"
	StatusWishlist UserStatus = "wishlist"
)

func (s UserStatus) Valid() bool {
	switch s {
	case StatusDropped, StatusFinished, StatusOngoing, StatusOnHold, StatusWishlist:
		return true
	}
	return false
}

// UserState is one user's progress record for one artifact. Pointer
// fields make null explicit in JSON; a state row is created lazily the
// first time any setter touches the artifact.
type UserState struct {
	UserID     string      `json:"user_id" db:"user_id"`
	ArtifactID int64       `json:"artifact_id" db:"artifact_id"`
	Status     *UserStatus `json:"status" db:"status"`
	Score      *float64    `json:"score" db:"score"`
	StartDate  *time.Time  `json:"start_date" db:"start_date"`
	EndDate    *time.Time  `json:"end_date" db:"end_date"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// UpdateUserStateRequest mutates status/score/dates independently; only
// non-nil fields are applied. Setting status to finished cascades to
// every descendant of the artifact.
type UpdateUserStateRequest struct {
	ArtifactID int64    `json:"artifact_id" binding:"required"`
	Status     string   `json:"status" binding:"omitempty,oneof=dropped finished ongoing onhold wishlist"`
	Score      *float64 `json:"score"`
	StartDate  *string  `json:"start_date"` // RFC 3339
	EndDate    *string  `json:"end_date"`   // RFC 3339
}
