package routes

import (
	"net/http"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (routes *Routes) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   routes.envConfig.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (routes *Routes) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (routes *Routes) PostVoterLogin(w http.ResponseWriter, r *http.Request) *AppError {
	var creds credentials
	if appErr := decodeJSON(r, &creds); appErr != nil {
		return appErr
	}
	token, err := routes.db.LoginVoter(r.Context(), creds.Username, creds.Password)
	if err != nil {
		return appError(err)
	}
	routes.setTokenCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
	return nil
}

func (routes *Routes) PostVoterLogout(w http.ResponseWriter, r *http.Request) *AppError {
	if err := routes.db.SignoutVoter(r.Context(), tokenFromRequest(r)); err != nil {
		return appError(err)
	}
	routes.clearTokenCookie(w)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) GetMe(w http.ResponseWriter, r *http.Request) *AppError {
	voterH := GetVoterH(r)
	voter, err := voterH.Read(r.Context())
	if err != nil {
		return appError(err)
	}
	respondJSON(w, http.StatusOK, voter)
	return nil
}

func (routes *Routes) PostAdminLogin(w http.ResponseWriter, r *http.Request) *AppError {
	var creds credentials
	if appErr := decodeJSON(r, &creds); appErr != nil {
		return appErr
	}
	token, err := routes.db.LoginAdmin(r.Context(), creds.Username, creds.Password)
	if err != nil {
		return appError(err)
	}
	routes.setTokenCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
	return nil
}

func (routes *Routes) PostAdminLogout(w http.ResponseWriter, r *http.Request) *AppError {
	if err := routes.db.SignoutAdmin(r.Context(), tokenFromRequest(r)); err != nil {
		return appError(err)
	}
	routes.clearTokenCookie(w)
	w.WriteHeader(http.StatusNoContent)
	return nil
}
