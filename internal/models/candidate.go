package models

import "database/sql"

type Candidate struct {
	ID          int           `json:"id"`
	EventID     int           `db:"event_id" json:"event_id"`
	PositionID  int           `db:"position_id" json:"position_id"`
	PartylistID sql.NullInt32 `db:"partylist_id" json:"partylist_id"`
	Name        string        `json:"name"`
	Platform    string        `json:"platform"`
}

// CandidateView joins in the partylist name for ballot sheets and results.
type CandidateView struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Platform  string         `json:"platform"`
	Partylist sql.NullString `json:"partylist"`
}
