package routes

import (
	"net/http"

	"gitlab.com/halalan/halalan/internal/models"
)

func (routes *Routes) GetActiveEvent(w http.ResponseWriter, r *http.Request) *AppError {
	event, err := routes.db.ActiveEvent(r.Context())
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, event)
	return nil
}

func (routes *Routes) GetBallotSheet(w http.ResponseWriter, r *http.Request) *AppError {
	voterH := GetVoterH(r)
	sheet, err := routes.db.BallotSheet(r.Context(), voterH.EventID())
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, sheet)
	return nil
}

// GetBallotStatus tells the voting screen which positions are already locked
// for this voter.
func (routes *Routes) GetBallotStatus(w http.ResponseWriter, r *http.Request) *AppError {
	voterH := GetVoterH(r)
	voted, err := voterH.VotedPositions(r.Context())
	if err != nil {
		return appError(err)
	}
	event, err := routes.db.GetEvent(r.Context(), voterH.EventID())
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, struct {
		Event          *models.Event `json:"event"`
		VotedPositions []int         `json:"voted_positions"`
	}{event, voted})
	return nil
}

func (routes *Routes) PostBallot(w http.ResponseWriter, r *http.Request) *AppError {
	voterH := GetVoterH(r)

	var ballot models.Ballot
	if appErr := decodeJSON(r, &ballot); appErr != nil {
		return appErr
	}
	// RealIP middleware already resolved forwarding headers.
	ballot.Address = r.RemoteAddr

	receipt, err := voterH.CastBallot(r.Context(), &ballot)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusCreated, map[string]string{"receipt": receipt})
	return nil
}
