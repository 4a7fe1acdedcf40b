package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
	"github.com/diewo77/techfix-admin/internal/validation"
)

// Explicit constant for 303 See Other (Post/Redirect/Get)
const statusSeeOther = 303

type AuthHandler struct {
	Client   *techfix.Client
	Sessions *session.Provider
}

func NewAuthHandler(client *techfix.Client, sessions *session.Provider) *AuthHandler {
	return &AuthHandler{Client: client, Sessions: sessions}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		// Already signed in: the middleware resolved the credential.
		if session.UserFrom(r.Context()) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	v := validation.Violations{}
	validation.Required("username", username, v)
	validation.Required("password", password, v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		renderTemplate(w, r, "login", map[string]any{"Errors": v, "Username": username})
		return
	}

	res, err := h.Client.Login(r.Context(), username, password)
	if err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "login_failed", nil)
			return
		}
		renderTemplate(w, r, "login", map[string]any{"Error": "login_failed", "Username": username})
		return
	}
	h.Sessions.CreateSession(w, res.Token)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, res.User())
		return
	}
	http.Redirect(w, r, "/", statusSeeOther)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "register", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	company := strings.TrimSpace(r.FormValue("company_name"))
	password := r.FormValue("password")
	v := validation.Violations{}
	validation.Required("username", username, v)
	validation.Required("email", email, v)
	validation.Required("company_name", company, v)
	validation.Required("password", password, v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		renderTemplate(w, r, "register", map[string]any{"Errors": v, "Username": username, "Email": email, "CompanyName": company})
		return
	}

	if err := h.Client.RegisterUser(r.Context(), username, password, email, company); err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "register_failed", nil)
			return
		}
		renderTemplate(w, r, "register", map[string]any{"Error": err.Error(), "Username": username, "Email": email, "CompanyName": company})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]string{"status": "registered"})
		return
	}
	middleware.Flash(w, r, "register_ok")
	http.Redirect(w, r, "/login", statusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	// Best effort: the local credential is dropped even when the backend
	// call fails.
	if token, ok := h.Sessions.ParseSession(r); ok {
		_ = h.Client.Logout(techfix.WithToken(r.Context(), token))
		h.Sessions.Invalidate(token)
	}
	h.Sessions.ClearSession(w)
	http.Redirect(w, r, "/login", statusSeeOther)
}
