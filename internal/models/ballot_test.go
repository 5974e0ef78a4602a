package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func positionOf(t *testing.T, err error) int {
	t.Helper()
	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("error %v does not carry a position", err)
	}
	return selErr.PositionID
}

func TestBallotValidate(t *testing.T) {
	require := require.New(t)

	b := &Ballot{EventID: 1}
	require.ErrorIs(b.Validate(), ErrEmptyBallot)

	b = &Ballot{EventID: 1, Selections: []Selection{
		{PositionID: 1, CandidateIDs: []int{}},
	}}
	err := b.Validate()
	require.ErrorIs(err, ErrEmptyBallot)
	require.Equal(1, positionOf(t, err))

	b = &Ballot{EventID: 1, Selections: []Selection{
		{PositionID: 1, CandidateIDs: []int{10}},
		{PositionID: 1, CandidateIDs: []int{11}},
	}}
	err = b.Validate()
	require.ErrorIs(err, ErrDuplicateSelection)
	require.Equal(1, positionOf(t, err))

	b = &Ballot{EventID: 1, Selections: []Selection{
		{PositionID: 2, CandidateIDs: []int{10, 11, 10}},
	}}
	err = b.Validate()
	require.ErrorIs(err, ErrDuplicateSelection)
	require.Equal(2, positionOf(t, err))

	b = &Ballot{EventID: 1, Selections: []Selection{
		{PositionID: 1, CandidateIDs: []int{10}},
		{PositionID: 2, CandidateIDs: []int{11, 12}},
	}}
	require.NoError(b.Validate())
}

func TestEventAcceptsBallots(t *testing.T) {
	require := require.New(t)
	now := time.Now()
	event := &Event{
		Active:   true,
		OpensAt:  now.Add(-time.Hour),
		ClosesAt: now.Add(time.Hour),
	}
	require.True(event.AcceptsBallots(now))

	event.Active = false
	require.False(event.AcceptsBallots(now))

	event.Active = true
	require.False(event.AcceptsBallots(now.Add(2*time.Hour)))
	require.False(event.AcceptsBallots(now.Add(-2*time.Hour)))
	// The window is inclusive at opening, exclusive at closing.
	require.True(event.AcceptsBallots(event.OpensAt))
	require.False(event.AcceptsBallots(event.ClosesAt))
}
