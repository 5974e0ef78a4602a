package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func urlInt(r *http.Request, key string) (int, *AppError) {
	id, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		return 0, &AppError{
			Code:    http.StatusBadRequest,
			Kind:    "bad_payload",
			Message: "Malformed id in URL",
			Cause:   err,
		}
	}
	return id, nil
}

func (routes *Routes) GetResults(w http.ResponseWriter, r *http.Request) *AppError {
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	results, err := routes.db.RankedResults(r.Context(), eventID)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, results)
	return nil
}

func (routes *Routes) GetTurnout(w http.ResponseWriter, r *http.Request) *AppError {
	eventID, appErr := urlInt(r, "eventID")
	if appErr != nil {
		return appErr
	}
	turnout, err := routes.db.Turnout(r.Context(), eventID)
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, turnout)
	return nil
}
