package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gitlab.com/halalan/halalan/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var testDB *SharedDB

func TestMain(m *testing.M) {
	url := os.Getenv("HALALAN_TEST_DATABASE_URL")
	if url == "" {
		fmt.Println("HALALAN_TEST_DATABASE_URL not set, skipping database tests")
		os.Exit(0)
	}
	// Migrations are read relative to the repo root.
	if err := os.Chdir("./../.."); err != nil {
		panic(err)
	}
	// Reset database before testing
	if err := MigrateDown(url); err != nil {
		panic(err)
	}
	if err := MigrateUp(url); err != nil {
		panic(err)
	}
	config := &models.EnvConfig{DatabaseURL: url, SessionMaxAge: 3600, Debug: true}
	sdb, err := Connect(config)
	if err != nil {
		panic(err)
	}
	testDB = &sdb
	os.Exit(m.Run())
}

var nameSeq int64

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, atomic.AddInt64(&nameSeq, 1))
}

func testAdminH() *AdminH {
	return &AdminH{id: 0, sharedDB: testDB.db, bcryptCost: bcrypt.MinCost}
}

func testVoterH(voter *models.Voter) *VoterH {
	return &VoterH{id: voter.ID, eventID: voter.EventID, sharedDB: testDB.db}
}

func mockEvent(t *testing.T) *models.Event {
	t.Helper()
	event := &models.Event{
		Name:     uniqueName("Student Council "),
		Active:   true,
		OpensAt:  time.Now().Add(-time.Hour),
		ClosesAt: time.Now().Add(time.Hour),
	}
	if err := testAdminH().CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent(%v) = %v, want nil", event, err)
	}
	return event
}

func mockPosition(t *testing.T, eventID int, name string, maxVotes int) *models.Position {
	t.Helper()
	position := &models.Position{EventID: eventID, Name: name, MaxVotes: maxVotes}
	if err := testAdminH().CreatePosition(context.Background(), position); err != nil {
		t.Fatalf("CreatePosition(%v) = %v, want nil", position, err)
	}
	return position
}

func mockCandidate(t *testing.T, eventID, positionID int, name string) *models.Candidate {
	t.Helper()
	candidate := &models.Candidate{EventID: eventID, PositionID: positionID, Name: name}
	if err := testAdminH().CreateCandidate(context.Background(), candidate); err != nil {
		t.Fatalf("CreateCandidate(%v) = %v, want nil", candidate, err)
	}
	return candidate
}

func mockVoter(t *testing.T, eventID int) *models.Voter {
	t.Helper()
	voter := &models.Voter{
		EventID:  eventID,
		Username: uniqueName("voter"),
		Active:   true,
	}
	if err := testAdminH().CreateVoter(context.Background(), voter, "Secr3t!pass"); err != nil {
		t.Fatalf("CreateVoter(%v) = %v, want nil", voter, err)
	}
	return voter
}

func TestCastBallot(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	president := mockPosition(t, event.ID, "President", 1)
	board := mockPosition(t, event.ID, "Board Member", 2)
	presA := mockCandidate(t, event.ID, president.ID, "A")
	presB := mockCandidate(t, event.ID, president.ID, "B")
	boardC := mockCandidate(t, event.ID, board.ID, "C")
	boardD := mockCandidate(t, event.ID, board.ID, "D")
	boardE := mockCandidate(t, event.ID, board.ID, "E")

	voter := mockVoter(t, event.ID)
	voterH := testVoterH(voter)

	receipt, err := voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: president.ID, CandidateIDs: []int{presA.ID}},
		},
	})
	if err != nil || receipt == "" {
		t.Fatalf("CastBallot() = %q, %v, want receipt, nil", receipt, err)
	}

	// The position is locked after the first vote; resubmission is rejected,
	// not merged, and no new row is created.
	_, err = voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: president.ID, CandidateIDs: []int{presB.ID}},
		},
	})
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("CastBallot() second submission = %v, want ErrAlreadyVoted", err)
	}
	var ballotErr *BallotError
	if !errors.As(err, &ballotErr) || ballotErr.PositionID != president.ID {
		t.Fatalf("CastBallot() error = %v, want BallotError for position %d", err, president.ID)
	}
	if got := countVotesFor(t, voter.ID); got != 1 {
		t.Fatalf("vote rows after duplicate submission = %d, want 1", got)
	}

	// Over the limit: the whole submission is rejected, zero rows created.
	_, err = voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: board.ID, CandidateIDs: []int{boardC.ID, boardD.ID, boardE.ID}},
		},
	})
	if !errors.Is(err, ErrOverVoteLimit) {
		t.Fatalf("CastBallot() over limit = %v, want ErrOverVoteLimit", err)
	}
	if got := countVotesFor(t, voter.ID); got != 1 {
		t.Fatalf("vote rows after rejected ballot = %d, want 1", got)
	}

	// A candidate running for another position is invalid for this one.
	_, err = voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: board.ID, CandidateIDs: []int{presB.ID}},
		},
	})
	if !errors.Is(err, ErrInvalidCandidate) {
		t.Fatalf("CastBallot() foreign candidate = %v, want ErrInvalidCandidate", err)
	}

	// Duplicate candidate in the same selection is caught before storage.
	_, err = voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: board.ID, CandidateIDs: []int{boardC.ID, boardC.ID}},
		},
	})
	if !errors.Is(err, models.ErrDuplicateSelection) {
		t.Fatalf("CastBallot() duplicate selection = %v, want ErrDuplicateSelection", err)
	}

	// A valid board ballot still goes through after the rejections.
	_, err = voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: board.ID, CandidateIDs: []int{boardC.ID, boardD.ID}},
		},
	})
	if err != nil {
		t.Fatalf("CastBallot() valid board ballot = %v, want nil", err)
	}
	if got := countVotesFor(t, voter.ID); got != 3 {
		t.Fatalf("vote rows = %d, want 3", got)
	}

	voted, err := voterH.VotedPositions(ctx)
	if err != nil || len(voted) != 2 {
		t.Fatalf("VotedPositions() = %v, %v, want 2 positions, nil", voted, err)
	}
}

func TestCastBallotAllOrNothing(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	president := mockPosition(t, event.ID, "President", 1)
	board := mockPosition(t, event.ID, "Board Member", 2)
	presA := mockCandidate(t, event.ID, president.ID, "A")
	boardC := mockCandidate(t, event.ID, board.ID, "C")
	boardD := mockCandidate(t, event.ID, board.ID, "D")
	boardE := mockCandidate(t, event.ID, board.ID, "E")

	voter := mockVoter(t, event.ID)
	voterH := testVoterH(voter)

	// One submission naming a valid President selection and an over-limit
	// Board selection. The failing position sinks the whole ballot: the
	// President rows that already qualified must be rolled back too.
	_, err := voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: president.ID, CandidateIDs: []int{presA.ID}},
			{PositionID: board.ID, CandidateIDs: []int{boardC.ID, boardD.ID, boardE.ID}},
		},
	})
	if !errors.Is(err, ErrOverVoteLimit) {
		t.Fatalf("CastBallot() mixed ballot = %v, want ErrOverVoteLimit", err)
	}
	var ballotErr *BallotError
	if !errors.As(err, &ballotErr) || ballotErr.PositionID != board.ID {
		t.Fatalf("CastBallot() error = %v, want BallotError for position %d", err, board.ID)
	}
	if got := countVotesFor(t, voter.ID); got != 0 {
		t.Fatalf("vote rows after rejected mixed ballot = %d, want 0", got)
	}

	// With the Board selection trimmed to the limit the same voter can still
	// cast the full ballot.
	_, err = voterH.CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: president.ID, CandidateIDs: []int{presA.ID}},
			{PositionID: board.ID, CandidateIDs: []int{boardC.ID, boardD.ID}},
		},
	})
	if err != nil {
		t.Fatalf("CastBallot() corrected ballot = %v, want nil", err)
	}
	if got := countVotesFor(t, voter.ID); got != 3 {
		t.Fatalf("vote rows after corrected ballot = %d, want 3", got)
	}
}

func countVotesFor(t *testing.T, voterID int) int {
	t.Helper()
	count := 0
	err := testDB.db.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM votes WHERE voter_id = $1", voterID).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	return count
}

func TestCastBallotRejectsInactive(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	president := mockPosition(t, event.ID, "President", 1)
	presA := mockCandidate(t, event.ID, president.ID, "A")

	ballot := &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: president.ID, CandidateIDs: []int{presA.ID}},
		},
	}

	voter := mockVoter(t, event.ID)
	if err := testAdminH().SetVoterActive(ctx, voter.ID, false); err != nil {
		t.Fatalf("SetVoterActive() = %v, want nil", err)
	}
	_, err := testVoterH(voter).CastBallot(ctx, ballot)
	if !errors.Is(err, ErrInactiveVoter) {
		t.Fatalf("CastBallot() deactivated voter = %v, want ErrInactiveVoter", err)
	}

	// Closed event.
	event.Active = false
	if err := testAdminH().UpdateEvent(ctx, event); err != nil {
		t.Fatalf("UpdateEvent() = %v, want nil", err)
	}
	voter2 := mockVoter(t, event.ID)
	_, err = testVoterH(voter2).CastBallot(ctx, ballot)
	if !errors.Is(err, ErrInactiveEvent) {
		t.Fatalf("CastBallot() closed event = %v, want ErrInactiveEvent", err)
	}

	// Voter registered in another event.
	otherEvent := mockEvent(t)
	voter3 := mockVoter(t, otherEvent.ID)
	_, err = testVoterH(voter3).CastBallot(ctx, ballot)
	if !errors.Is(err, ErrWrongEvent) {
		t.Fatalf("CastBallot() wrong event = %v, want ErrWrongEvent", err)
	}
}

func TestCastBallotConcurrent(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	president := mockPosition(t, event.ID, "President", 1)
	presA := mockCandidate(t, event.ID, president.ID, "A")
	presB := mockCandidate(t, event.ID, president.ID, "B")

	voter := mockVoter(t, event.ID)

	// Two simultaneous submissions for the same voter and position, picking
	// different candidates. The row lock on the voter serializes them;
	// exactly one must win.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, candidateID := range []int{presA.ID, presB.ID} {
		wg.Add(1)
		go func(i, candidateID int) {
			defer wg.Done()
			_, errs[i] = testVoterH(voter).CastBallot(ctx, &models.Ballot{
				EventID: event.ID,
				Selections: []models.Selection{
					{PositionID: president.ID, CandidateIDs: []int{candidateID}},
				},
			})
		}(i, candidateID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrAlreadyVoted) {
			t.Fatalf("concurrent CastBallot() = %v, want nil or ErrAlreadyVoted", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("concurrent CastBallot() successes = %d, want exactly 1", succeeded)
	}
	if got := countVotesFor(t, voter.ID); got != 1 {
		t.Fatalf("vote rows after concurrent submissions = %d, want 1", got)
	}
}

func TestCreatePositionBadMaxVotes(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)

	position := &models.Position{EventID: event.ID, Name: "President", MaxVotes: 0}
	if err := testAdminH().CreatePosition(ctx, position); !errors.Is(err, ErrBadMaxVotes) {
		t.Fatalf("CreatePosition() max_votes 0 = %v, want ErrBadMaxVotes", err)
	}

	valid := mockPosition(t, event.ID, "President", 1)
	valid.MaxVotes = -1
	if err := testAdminH().UpdatePosition(ctx, valid); !errors.Is(err, ErrBadMaxVotes) {
		t.Fatalf("UpdatePosition() max_votes -1 = %v, want ErrBadMaxVotes", err)
	}
}

func TestCreateCandidateForeignPosition(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	otherEvent := mockEvent(t)
	position := mockPosition(t, event.ID, "President", 1)

	// The position exists, but in another event.
	candidate := &models.Candidate{EventID: otherEvent.ID, PositionID: position.ID, Name: "A"}
	if err := testAdminH().CreateCandidate(ctx, candidate); !errors.Is(err, ErrInvalidCandidate) {
		t.Fatalf("CreateCandidate() foreign position = %v, want ErrInvalidCandidate", err)
	}
}

func TestRankedResults(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	president := mockPosition(t, event.ID, "President", 1)
	presA := mockCandidate(t, event.ID, president.ID, "A")
	presB := mockCandidate(t, event.ID, president.ID, "B")
	presC := mockCandidate(t, event.ID, president.ID, "C")

	// B gets 2 votes, A gets 1, C gets 0.
	for _, candidateID := range []int{presB.ID, presB.ID, presA.ID} {
		voter := mockVoter(t, event.ID)
		_, err := testVoterH(voter).CastBallot(ctx, &models.Ballot{
			EventID: event.ID,
			Selections: []models.Selection{
				{PositionID: president.ID, CandidateIDs: []int{candidateID}},
			},
		})
		if err != nil {
			t.Fatalf("CastBallot() = %v, want nil", err)
		}
	}

	results, err := testDB.RankedResults(ctx, event.ID)
	if err != nil {
		t.Fatalf("RankedResults(%d) = %v, want nil", event.ID, err)
	}
	if len(results) != 1 {
		t.Fatalf("RankedResults() positions = %d, want 1", len(results))
	}
	got := results[0]
	if got.PositionID != president.ID || len(got.Candidates) != 3 {
		t.Fatalf("RankedResults() = %+v, want 3 ranked candidates for President", got)
	}
	wantOrder := []int{presB.ID, presA.ID, presC.ID}
	wantVotes := []int{2, 1, 0}
	for i, tally := range got.Candidates {
		if tally.CandidateID != wantOrder[i] || tally.Votes != wantVotes[i] {
			t.Fatalf("RankedResults() rank %d = (%d, %d), want (%d, %d)",
				i, tally.CandidateID, tally.Votes, wantOrder[i], wantVotes[i])
		}
	}

	// Repeated reads of unchanged data keep the exact ordering.
	again, err := testDB.RankedResults(ctx, event.ID)
	if err != nil {
		t.Fatalf("RankedResults() second call = %v, want nil", err)
	}
	for i := range again[0].Candidates {
		if again[0].Candidates[i] != got.Candidates[i] {
			t.Fatalf("RankedResults() not deterministic: %+v vs %+v",
				again[0].Candidates[i], got.Candidates[i])
		}
	}
}

func TestTurnout(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	president := mockPosition(t, event.ID, "President", 1)
	presA := mockCandidate(t, event.ID, president.ID, "A")

	voters := make([]*models.Voter, 4)
	for i := range voters {
		voters[i] = mockVoter(t, event.ID)
	}
	for _, voter := range voters[:2] {
		_, err := testVoterH(voter).CastBallot(ctx, &models.Ballot{
			EventID: event.ID,
			Selections: []models.Selection{
				{PositionID: president.ID, CandidateIDs: []int{presA.ID}},
			},
		})
		if err != nil {
			t.Fatalf("CastBallot() = %v, want nil", err)
		}
	}

	turnout, err := testDB.Turnout(ctx, event.ID)
	if err != nil {
		t.Fatalf("Turnout(%d) = %v, want nil", event.ID, err)
	}
	want := models.Turnout{VotersCast: 2, VotersTotal: 4, Percent: 50.0}
	if turnout != want {
		t.Fatalf("Turnout() = %+v, want %+v", turnout, want)
	}

	// An event with no voters reports 0 percent, not an error.
	empty := mockEvent(t)
	turnout, err = testDB.Turnout(ctx, empty.ID)
	if err != nil || turnout != (models.Turnout{}) {
		t.Fatalf("Turnout() empty event = %+v, %v, want zero turnout, nil", turnout, err)
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	voter := mockVoter(t, event.ID)

	_, err := testDB.LoginVoter(ctx, voter.Username, "wrong password")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("LoginVoter() wrong password = %v, want ErrBadCredentials", err)
	}

	token, err := testDB.LoginVoter(ctx, voter.Username, "Secr3t!pass")
	if err != nil {
		t.Fatalf("LoginVoter() = %v, want nil", err)
	}
	voterH, err := testDB.GetVoterH(ctx, token)
	if err != nil || voterH.ID() != voter.ID {
		t.Fatalf("GetVoterH() = %v, %v, want handle for voter %d", voterH, err, voter.ID)
	}

	// Deactivation revokes the session immediately.
	if err := testAdminH().SetVoterActive(ctx, voter.ID, false); err != nil {
		t.Fatalf("SetVoterActive() = %v, want nil", err)
	}
	if _, err := testDB.GetVoterH(ctx, token); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("GetVoterH() after deactivation = %v, want ErrBadCredentials", err)
	}

	// Reactivation does not resurrect old tokens.
	if err := testAdminH().SetVoterActive(ctx, voter.ID, true); err != nil {
		t.Fatalf("SetVoterActive() = %v, want nil", err)
	}
	if _, err := testDB.GetVoterH(ctx, token); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("GetVoterH() after reactivation = %v, want ErrBadCredentials", err)
	}
}

func TestClearAllVotes(t *testing.T) {
	ctx := context.Background()
	event := mockEvent(t)
	president := mockPosition(t, event.ID, "President", 1)
	presA := mockCandidate(t, event.ID, president.ID, "A")
	voter := mockVoter(t, event.ID)

	_, err := testVoterH(voter).CastBallot(ctx, &models.Ballot{
		EventID: event.ID,
		Selections: []models.Selection{
			{PositionID: president.ID, CandidateIDs: []int{presA.ID}},
		},
	})
	if err != nil {
		t.Fatalf("CastBallot() = %v, want nil", err)
	}

	if err := testAdminH().ClearAllVotes(ctx); err != nil {
		t.Fatalf("ClearAllVotes() = %v, want nil", err)
	}
	total := 0
	if err := testDB.db.QueryRow(ctx, "SELECT COUNT(*) FROM votes").Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("votes after ClearAllVotes() = %d, want 0", total)
	}
}
