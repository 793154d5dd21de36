package room

import (
	"time"

	"github.com/google/uuid"
)

// Room maps to the rooms table. CurrentOccupancy is mutated only by
// the conditional increment/decrement statements in the repository,
// never by a plain update.
type Room struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Number           string    `db:"number" json:"number"`
	Type             string    `db:"type" json:"type"`
	Capacity         int       `db:"capacity" json:"capacity"`
	CurrentOccupancy int       `db:"current_occupancy" json:"current_occupancy"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// HasSpareCapacity reports whether at least one bed is free. Admission
// uses this only as a precondition check; the authoritative guard is
// the conditional increment.
func (r *Room) HasSpareCapacity() bool {
	return r.CurrentOccupancy < r.Capacity
}

// Update carries the optional fields of a partial room update.
// Occupancy is deliberately absent.
type Update struct {
	Number   *string `json:"number,omitempty"`
	Type     *string `json:"type,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}
