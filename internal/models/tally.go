package models

import (
	"database/sql"
	"math"
)

// CandidateTally is one candidate's vote count within a position.
type CandidateTally struct {
	CandidateID int            `json:"candidate_id"`
	Candidate   string         `json:"candidate"`
	Partylist   sql.NullString `json:"partylist"`
	Votes       int            `json:"votes"`
}

// PositionResult holds a position's candidates ranked by vote count,
// descending, ties broken by candidate id ascending. The ordering is stable
// across repeated reads of unchanged data, which printed reports rely on.
type PositionResult struct {
	PositionID int              `json:"position_id"`
	Position   string           `json:"position"`
	MaxVotes   int              `json:"max_votes"`
	Candidates []CandidateTally `json:"candidates"`
}

// Turnout is the participation summary for one event.
type Turnout struct {
	VotersCast  int     `json:"voters_cast"`
	VotersTotal int     `json:"voters_total"`
	Percent     float64 `json:"percent"`
}

// ComputeTurnout rounds the percentage to one decimal. An event with no
// registered voters reports 0, not an error.
func ComputeTurnout(cast, total int) Turnout {
	t := Turnout{VotersCast: cast, VotersTotal: total}
	if total > 0 {
		t.Percent = math.Round(float64(cast)*1000/float64(total)) / 10
	}
	return t
}
