package models

import "time"

// ActivityEntry records one accepted ballot for post-hoc anomaly review.
// Receipt is the opaque id handed back to the voter on success.
type ActivityEntry struct {
	ID        int       `json:"id"`
	Receipt   string    `json:"receipt"`
	VoterID   int       `db:"voter_id" json:"voter_id"`
	EventID   int       `db:"event_id" json:"event_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
