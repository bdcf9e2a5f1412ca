package handler

import (
	"log/slog"
	"net/http"

	"github.com/manelromero/blog/internal/auth"
	"github.com/manelromero/blog/internal/service"
)

// AuthHandler serves the signup, login, and logout routes.
//
// On a successful signup or login the handler sets the signed session cookie
// and redirects home; on validation failure it re-renders the form with the
// accumulated field errors and the values the user already typed (passwords
// excepted — those are never echoed back).
type AuthHandler struct {
	auth     *service.AuthService
	signer   *auth.CookieSigner
	renderer *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	authSvc *service.AuthService,
	signer *auth.CookieSigner,
	renderer *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		signer:   signer,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleSignUpForm renders the empty signup form.
//
// HTTP: GET /signup
func (h *AuthHandler) HandleSignUpForm(w http.ResponseWriter, r *http.Request) {
	data := baseData(r)
	data["Error"] = service.FieldErrors{}
	h.renderer.Render(w, http.StatusOK, "signup.html", data)
}

// HandleSignUp processes a signup submission.
//
// HTTP: POST /signup — fields: username, password, verify, email
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("username")
	password := r.PostFormValue("password")
	verify := r.PostFormValue("verify")
	email := r.PostFormValue("email")

	user, fieldErrs, err := h.auth.SignUp(r.Context(), name, password, verify, email)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if len(fieldErrs) > 0 {
		data := baseData(r)
		data["Name"] = name
		data["Email"] = email
		data["Error"] = fieldErrs
		h.renderer.Render(w, http.StatusOK, "signup.html", data)
		return
	}

	// Valid signup: the caller is immediately authenticated.
	auth.SetSessionCookie(w, h.signer, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogInForm renders the empty login form.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLogInForm(w http.ResponseWriter, r *http.Request) {
	data := baseData(r)
	data["Error"] = service.FieldErrors{}
	h.renderer.Render(w, http.StatusOK, "login.html", data)
}

// HandleLogIn processes a login submission.
//
// HTTP: POST /login — fields: username, password
func (h *AuthHandler) HandleLogIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, fieldErrs, err := h.auth.LogIn(r.Context(), name, password)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if len(fieldErrs) > 0 {
		data := baseData(r)
		data["Name"] = name
		data["Error"] = fieldErrs
		h.renderer.Render(w, http.StatusOK, "login.html", data)
		return
	}

	auth.SetSessionCookie(w, h.signer, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogOut clears the session cookie.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogOut(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
