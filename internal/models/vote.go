package models

import "time"

// Vote is the atomic ballot record. A (voter, candidate) pair is unique,
// enforced by the schema; rows are only ever created through ballot casting
// and only removed by the admin bulk wipe.
type Vote struct {
	ID          int       `json:"id"`
	VoterID     int       `db:"voter_id" json:"voter_id"`
	CandidateID int       `db:"candidate_id" json:"candidate_id"`
	PositionID  int       `db:"position_id" json:"position_id"`
	EventID     int       `db:"event_id" json:"event_id"`
	CastAt      time.Time `db:"cast_at" json:"cast_at"`
}
