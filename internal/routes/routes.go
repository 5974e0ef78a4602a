package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gitlab.com/halalan/halalan/internal/db"
	"gitlab.com/halalan/halalan/internal/models"
)

type ctxKey int

const (
	VoterHCtxKey ctxKey = iota
	AdminHCtxKey
)

type Routes struct {
	envConfig *models.EnvConfig
	db        *db.SharedDB
	logger    zerolog.Logger
}

func NewRouter(envConfig *models.EnvConfig, database *db.SharedDB, logger zerolog.Logger) chi.Router {
	routes := &Routes{envConfig: envConfig, db: database, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Int("status", status).
			Dur("duration", duration).
			Msg("Request served")
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", routes.AppHandler(routes.PostVoterLogin))
		// Which event is currently open is the caller's lookup; every core
		// operation below still takes the event id explicitly.
		r.Get("/event", routes.AppHandler(routes.GetActiveEvent))

		r.Group(func(r chi.Router) {
			r.Use(routes.VoterCtx)
			r.Use(routes.EnforceCtx(VoterHCtxKey))
			r.Post("/logout", routes.AppHandler(routes.PostVoterLogout))
			r.Get("/me", routes.AppHandler(routes.GetMe))
			r.Get("/ballot", routes.AppHandler(routes.GetBallotSheet))
			r.Get("/ballot/status", routes.AppHandler(routes.GetBallotStatus))
			r.Post("/ballot", routes.AppHandler(routes.PostBallot))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", routes.AppHandler(routes.PostAdminLogin))

			r.Group(func(r chi.Router) {
				r.Use(routes.AdminCtx)
				r.Use(routes.EnforceCtx(AdminHCtxKey))
				r.Post("/logout", routes.AppHandler(routes.PostAdminLogout))

				r.Post("/events", routes.AppHandler(routes.PostEvent))
				r.Get("/events", routes.AppHandler(routes.GetEvents))
				r.Put("/events/{eventID}", routes.AppHandler(routes.PutEvent))
				r.Delete("/events/{eventID}", routes.AppHandler(routes.DeleteEvent))
				r.Get("/events/{eventID}/results", routes.AppHandler(routes.GetResults))
				r.Get("/events/{eventID}/turnout", routes.AppHandler(routes.GetTurnout))

				r.Post("/positions", routes.AppHandler(routes.PostPosition))
				r.Get("/events/{eventID}/positions", routes.AppHandler(routes.GetPositions))
				r.Put("/positions/{positionID}", routes.AppHandler(routes.PutPosition))
				r.Delete("/positions/{positionID}", routes.AppHandler(routes.DeletePosition))

				r.Post("/candidates", routes.AppHandler(routes.PostCandidate))
				r.Get("/events/{eventID}/candidates", routes.AppHandler(routes.GetCandidates))
				r.Put("/candidates/{candidateID}", routes.AppHandler(routes.PutCandidate))
				r.Delete("/candidates/{candidateID}", routes.AppHandler(routes.DeleteCandidate))

				r.Post("/partylists", routes.AppHandler(routes.PostPartylist))
				r.Get("/events/{eventID}/partylists", routes.AppHandler(routes.GetPartylists))
				r.Put("/partylists/{partylistID}", routes.AppHandler(routes.PutPartylist))
				r.Delete("/partylists/{partylistID}", routes.AppHandler(routes.DeletePartylist))

				r.Post("/voters", routes.AppHandler(routes.PostVoter))
				r.Get("/events/{eventID}/voters", routes.AppHandler(routes.GetVoters))
				r.Put("/voters/{voterID}", routes.AppHandler(routes.PutVoter))
				r.Patch("/voters/{voterID}/active", routes.AppHandler(routes.PatchVoterActive))
				r.Delete("/voters/{voterID}", routes.AppHandler(routes.DeleteVoter))

				r.Get("/events/{eventID}/votes", routes.AppHandler(routes.GetVotes))
				r.Get("/activity", routes.AppHandler(routes.GetActivity))
				r.Delete("/votes", routes.AppHandler(routes.DeleteAllVotes))
			})
		})
	})
	return r
}

// AppError carries everything needed to answer a failed request: the HTTP
// code, a voter-facing message, a machine-readable kind, and, for ballot
// failures, the position that was rejected.
type AppError struct {
	Code       int    `json:"-"`
	Message    string `json:"error"`
	Kind       string `json:"kind,omitempty"`
	PositionID int    `json:"position_id,omitempty"`
	Cause      error  `json:"-"`
}

func (routes *Routes) AppHandler(handler func(w http.ResponseWriter, r *http.Request) *AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appErr := handler(w, r)
		if appErr == nil {
			return
		}
		if appErr.Code == 0 {
			appErr.Code = http.StatusInternalServerError
		}
		if appErr.Message == "" {
			appErr.Message = "Internal server error"
		}
		respondJSON(w, appErr.Code, appErr)
		hlog.FromRequest(r).
			Error().
			Str("request_id", middleware.GetReqID(r.Context())).
			Err(appErr.Cause).
			Msg(appErr.Message)
	}
}

// appError maps core errors onto HTTP answers. Validation and state-conflict
// kinds each get a distinct code and kind string; anything unrecognized is a
// generic internal failure, never silently swallowed.
func appError(err error) *AppError {
	ae := &AppError{Cause: err}
	var ballotErr *db.BallotError
	if errors.As(err, &ballotErr) {
		ae.PositionID = ballotErr.PositionID
	}
	var selErr *models.SelectionError
	if errors.As(err, &selErr) {
		ae.PositionID = selErr.PositionID
	}

	switch {
	case errors.Is(err, db.ErrAlreadyVoted):
		ae.Code, ae.Kind = http.StatusConflict, "already_voted"
		ae.Message = "A vote is already recorded for this position"
	case errors.Is(err, db.ErrOverVoteLimit):
		ae.Code, ae.Kind = http.StatusBadRequest, "over_vote_limit"
		ae.Message = "Too many candidates selected for this position"
	case errors.Is(err, models.ErrDuplicateSelection):
		ae.Code, ae.Kind = http.StatusBadRequest, "duplicate_selection"
		ae.Message = "The same candidate is selected twice"
	case errors.Is(err, models.ErrEmptyBallot):
		ae.Code, ae.Kind = http.StatusBadRequest, "empty_ballot"
		ae.Message = "The ballot contains no selections"
	case errors.Is(err, db.ErrBadMaxVotes):
		ae.Code, ae.Kind = http.StatusBadRequest, "bad_max_votes"
		ae.Message = "A position must allow at least one vote"
	case errors.Is(err, db.ErrInvalidCandidate):
		ae.Code, ae.Kind = http.StatusBadRequest, "invalid_candidate"
		ae.Message = "A selected candidate does not run for this position"
	case errors.Is(err, db.ErrInactiveVoter):
		ae.Code, ae.Kind = http.StatusForbidden, "inactive_voter"
		ae.Message = "This voter account is deactivated"
	case errors.Is(err, db.ErrInactiveEvent):
		ae.Code, ae.Kind = http.StatusForbidden, "inactive_event"
		ae.Message = "The election is not open for voting"
	case errors.Is(err, db.ErrWrongEvent):
		ae.Code, ae.Kind = http.StatusForbidden, "wrong_event"
		ae.Message = "This voter is not registered in the election"
	case errors.Is(err, db.ErrBadCredentials):
		ae.Code, ae.Kind = http.StatusUnauthorized, "bad_credentials"
		ae.Message = "Wrong username or password"
	case errors.Is(err, db.ErrUsernameTaken):
		ae.Code, ae.Kind = http.StatusConflict, "username_taken"
		ae.Message = "The username is already taken"
	case errors.Is(err, db.ErrVoterNotFound), errors.Is(err, db.ErrNotFound):
		ae.Code, ae.Kind = http.StatusNotFound, "not_found"
		ae.Message = "Not found"
	default:
		ae.Code = http.StatusInternalServerError
		ae.Message = "Internal server error"
	}
	return ae
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) *AppError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &AppError{
			Code:    http.StatusBadRequest,
			Kind:    "bad_payload",
			Message: "Malformed request body",
			Cause:   err,
		}
	}
	return nil
}

// tokenFromRequest accepts the session token either as a bearer header or as
// the cookie set at login.
func tokenFromRequest(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

func (routes *Routes) VoterCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		voterH, err := routes.db.GetVoterH(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), VoterHCtxKey, voterH)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (routes *Routes) AdminCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		adminH, err := routes.db.GetAdminH(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), AdminHCtxKey, adminH)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EnforceCtx rejects requests that reached a protected route without the
// corresponding handle in context.
func (routes *Routes) EnforceCtx(key ctxKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Context().Value(key) == nil {
				respondJSON(w, http.StatusUnauthorized, &AppError{
					Message: "Authentication required",
					Kind:    "unauthenticated",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetVoterH(r *http.Request) *db.VoterH {
	voterH, _ := r.Context().Value(VoterHCtxKey).(*db.VoterH)
	return voterH
}

func GetAdminH(r *http.Request) *db.AdminH {
	adminH, _ := r.Context().Value(AdminHCtxKey).(*db.AdminH)
	return adminH
}
