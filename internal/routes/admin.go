package routes

import (
	"net/http"

	"gitlab.com/halalan/halalan/internal/models"
)

func (routes *Routes) PostEvent(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	var event models.Event
	if appErr := decodeJSON(r, &event); appErr != nil {
		return appErr
	}
	if err := adminH.CreateEvent(r.Context(), &event); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusCreated, event)
	return nil
}

func (routes *Routes) GetEvents(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	events, err := adminH.ListEvents(r.Context())
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, events)
	return nil
}

func (routes *Routes) PutEvent(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	var event models.Event
	if appErr := decodeJSON(r, &event); appErr != nil {
		return appErr
	}
	event.ID = eventID
	if err := adminH.UpdateEvent(r.Context(), &event); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, event)
	return nil
}

func (routes *Routes) DeleteEvent(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	if err := adminH.DeleteEvent(r.Context(), eventID); err != nil {
		return appError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) PostPosition(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	var position models.Position
	if appErr := decodeJSON(r, &position); appErr != nil {
		return appErr
	}
	if err := adminH.CreatePosition(r.Context(), &position); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusCreated, position)
	return nil
}

func (routes *Routes) GetPositions(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	positions, err := adminH.ListPositions(r.Context(), eventID)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, positions)
	return nil
}

func (routes *Routes) PutPosition(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	positionID, appErr := urlInt(r, "positionID")
	if appErr != nil {
		return appErr
	}
	var position models.Position
	if appErr := decodeJSON(r, &position); appErr != nil {
		return appErr
	}
	position.ID = positionID
	if err := adminH.UpdatePosition(r.Context(), &position); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, position)
	return nil
}

func (routes *Routes) DeletePosition(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	positionID, appErr := urlInt(r, "positionID")
	if appErr != nil {
		return appErr
	}
	if err := adminH.DeletePosition(r.Context(), positionID); err != nil {
		return appError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) PostCandidate(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	var candidate models.Candidate
	if appErr := decodeJSON(r, &candidate); appErr != nil {
		return appErr
	}
	if err := adminH.CreateCandidate(r.Context(), &candidate); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusCreated, candidate)
	return nil
}

func (routes *Routes) GetCandidates(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	candidates, err := adminH.ListCandidates(r.Context(), eventID)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, candidates)
	return nil
}

func (routes *Routes) PutCandidate(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	candidateID, appErr := urlInt(r, "candidateID")
	if appErr != nil {
		return appErr
	}
	var candidate models.Candidate
	if appErr := decodeJSON(r, &candidate); appErr != nil {
		return appErr
	}
	candidate.ID = candidateID
	if err := adminH.UpdateCandidate(r.Context(), &candidate); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, candidate)
	return nil
}

func (routes *Routes) DeleteCandidate(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	candidateID, appErr := urlInt(r, "candidateID")
	if appErr != nil {
		return appErr
	}
	if err := adminH.DeleteCandidate(r.Context(), candidateID); err != nil {
		return appError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) PostPartylist(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	var partylist models.Partylist
	if appErr := decodeJSON(r, &partylist); appErr != nil {
		return appErr
	}
	if err := adminH.CreatePartylist(r.Context(), &partylist); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusCreated, partylist)
	return nil
}

func (routes *Routes) GetPartylists(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	partylists, err := adminH.ListPartylists(r.Context(), eventID)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, partylists)
	return nil
}

func (routes *Routes) PutPartylist(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	partylistID, appErr := urlInt(r, "partylistID")
	if appErr != nil {
		return appErr
	}
	var partylist models.Partylist
	if appErr := decodeJSON(r, &partylist); appErr != nil {
		return appErr
	}
	partylist.ID = partylistID
	if err := adminH.UpdatePartylist(r.Context(), &partylist); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, partylist)
	return nil
}

func (routes *Routes) DeletePartylist(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	partylistID, appErr := urlInt(r, "partylistID")
	if appErr != nil {
		return appErr
	}
	if err := adminH.DeletePartylist(r.Context(), partylistID); err != nil {
		return appError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) PostVoter(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	var payload struct {
		models.Voter
		Password string `json:"password"`
	}
	if appErr := decodeJSON(r, &payload); appErr != nil {
		return appErr
	}
	payload.Voter.Active = true
	if err := adminH.CreateVoter(r.Context(), &payload.Voter, payload.Password); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusCreated, payload.Voter)
	return nil
}

func (routes *Routes) GetVoters(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	voters, err := adminH.ListVoters(r.Context(), eventID)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, voters)
	return nil
}

func (routes *Routes) PutVoter(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	voterID, appErr := urlInt(r, "voterID")
	if appErr != nil {
		return appErr
	}
	var voter models.Voter
	if appErr := decodeJSON(r, &voter); appErr != nil {
		return appErr
	}
	voter.ID = voterID
	if err := adminH.UpdateVoter(r.Context(), &voter); err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, voter)
	return nil
}

func (routes *Routes) PatchVoterActive(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	voterID, appErr := urlInt(r, "voterID")
	if appErr != nil {
		return appErr
	}
	var payload struct {
		Active bool `json:"active"`
	}
	if appErr := decodeJSON(r, &payload); appErr != nil {
		return appErr
	}
	if err := adminH.SetVoterActive(r.Context(), voterID, payload.Active); err != nil {
		return appError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) DeleteVoter(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	voterID, appErr := urlInt(r, "voterID")
	if appErr != nil {
		return appErr
	}
	if err := adminH.DeleteVoter(r.Context(), voterID); err != nil {
		return appError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) GetVotes(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	votes, err := adminH.ListVotes(r.Context(), eventID)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, votes)
	return nil
}

func (routes *Routes) GetActivity(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	entries, err := adminH.ListActivity(r.Context(), 200)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, entries)
	return nil
}

// DeleteAllVotes wipes every recorded vote across all events. Destructive;
// only wired into the admin surface.
func (routes *Routes) DeleteAllVotes(w http.ResponseWriter, r *http.Request) *AppError {
	adminH := GetAdminH(r)
	if err := adminH.ClearAllVotes(r.Context()); err != nil {
		return appError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
