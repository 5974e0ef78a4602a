package models

import "time"

// Event is a single election instance. At most one event is flagged active
// for voter-facing casting at a time; that is a convention enforced by the
// admin screens, not by the schema.
type Event struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Active   bool      `json:"active"`
	OpensAt  time.Time `db:"opens_at" json:"opens_at"`
	ClosesAt time.Time `db:"closes_at" json:"closes_at"`
}

// AcceptsBallots reports whether a ballot submitted at the given instant
// falls inside the event's voting window.
func (e *Event) AcceptsBallots(now time.Time) bool {
	return e.Active && !now.Before(e.OpensAt) && now.Before(e.ClosesAt)
}
