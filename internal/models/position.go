package models

// Position is an electable office within an event. MaxVotes caps how many
// distinct candidates one voter may select for it in a single ballot.
// Priority controls display order on the ballot sheet and in reports.
type Position struct {
	ID       int    `json:"id"`
	EventID  int    `db:"event_id" json:"event_id"`
	Name     string `json:"name"`
	MaxVotes int    `db:"max_votes" json:"max_votes"`
	Priority int    `json:"priority"`
}

// PositionBallot is one position's slot on the voting screen: the office and
// the candidates running for it.
type PositionBallot struct {
	Position   Position        `json:"position"`
	Candidates []CandidateView `json:"candidates"`
}
