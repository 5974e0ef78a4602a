package models

import (
	"errors"
	"fmt"
)

var ErrEmptyBallot = errors.New("ballot contains no selections")
var ErrDuplicateSelection = errors.New("duplicate selection")

// SelectionError ties a validation failure to the position it occurred on, so
// the voter can be told which office to fix.
type SelectionError struct {
	PositionID int
	Err        error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("position %d: %v", e.PositionID, e.Err)
}
func (e *SelectionError) Unwrap() error { return e.Err }

// Selection is one position's slice of a ballot: the candidates the voter
// picked for that office, in the order they picked them.
type Selection struct {
	PositionID   int   `json:"position_id"`
	CandidateIDs []int `json:"candidate_ids"`
}

// Ballot is the full set of a voter's selections for one event, submitted in
// a single action. Address is the submitting network address, kept for the
// activity log only.
type Ballot struct {
	EventID    int         `json:"event_id"`
	Selections []Selection `json:"selections"`
	Address    string      `json:"-"`
}

// Validate checks the shape of the payload before it reaches storage: the
// ballot must name at least one position, no position may appear twice, every
// selection must pick at least one candidate, and a candidate may not appear
// twice within the same selection. Cardinality against max_votes and
// membership checks need reference data and happen in the store.
func (b *Ballot) Validate() error {
	if len(b.Selections) == 0 {
		return ErrEmptyBallot
	}
	seenPos := make(map[int]bool, len(b.Selections))
	for _, sel := range b.Selections {
		if seenPos[sel.PositionID] {
			return &SelectionError{PositionID: sel.PositionID, Err: ErrDuplicateSelection}
		}
		seenPos[sel.PositionID] = true

		if len(sel.CandidateIDs) == 0 {
			return &SelectionError{PositionID: sel.PositionID, Err: ErrEmptyBallot}
		}
		seenCand := make(map[int]bool, len(sel.CandidateIDs))
		for _, id := range sel.CandidateIDs {
			if seenCand[id] {
				return &SelectionError{PositionID: sel.PositionID, Err: ErrDuplicateSelection}
			}
			seenCand[id] = true
		}
	}
	return nil
}
