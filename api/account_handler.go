package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/multiblog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type accountHandler struct {
	responder    Responder
	logger       zerolog.Logger
	users        *services.UserService
	tokens       *services.TokenService
	cookieSecure bool
}

func newAccountHandler(users *services.UserService, tokens *services.TokenService, cookieSecure bool) accountHandler {
	logger := log.With().Str("handlerName", "accountHandler").Logger()

	return accountHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		users:        users,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

func (h accountHandler) setAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h accountHandler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// @Summary Login form fields
// @Tags Accounts
// @Produce json
// @Success 200 {object} formFieldsResponse
// @Router /accounts/login [get]
func (h accountHandler) loginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, formFieldsResponse{Fields: []string{"email", "password"}})
	}
}

// login authenticates by email and password and sets the auth cookie
// @Summary Log in
// @Description Failures never reveal whether the email exists
// @Tags Accounts
// @Accept json
// @Produce json
// @Success 200 {object} loginResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid form"
// @Failure 401 {object} ErrorResponse "Unauthorized - Credentials did not match"
// @Router /accounts/login [post]
func (h accountHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.bindLogin(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		token, expiresAt, err := h.tokens.Issue(user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.setAuthCookie(w, token, expiresAt)
		h.logger.Info().Uint("userID", user.ID).Msg("User logged in")
		h.responder.WriteJSON(w, loginResponse{User: user, Token: token, ExpiresAt: expiresAt})
	}
}

// @Summary Registration form fields
// @Tags Accounts
// @Produce json
// @Success 200 {object} formFieldsResponse
// @Router /accounts/register [get]
func (h accountHandler) registerForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, formFieldsResponse{Fields: []string{"email", "password1", "password2"}})
	}
}

// register creates an account; the user logs in afterwards
// @Summary Register
// @Tags Accounts
// @Accept json
// @Produce json
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid form"
// @Failure 409 {object} ErrorResponse "Conflict - Email already registered"
// @Router /accounts/register [post]
func (h accountHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.bindRegister(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.Register(r.Context(), form.Email, form.Password1)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, "/accounts/login", user)
	}
}

// @Summary Current user profile
// @Tags Accounts
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /accounts/profile [get]
func (h accountHandler) profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, ctxGetUser(r.Context()))
	}
}

// updateProfile changes the current user's username
// @Summary Update profile
// @Tags Accounts
// @Accept json
// @Produce json
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid form"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /accounts/profile [post]
func (h accountHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.bindProfile(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.UpdateUsername(r.Context(), ctxGetUser(r.Context()), form.Username)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// @Summary Log out
// @Tags Accounts
// @Produce json
// @Success 200 {object} statusResponse
// @Router /accounts/logout [get]
func (h accountHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.clearAuthCookie(w)
		h.responder.WriteJSON(w, statusResponse{
			Status:   "success",
			Message:  "logged out",
			Redirect: "/accounts/login",
		})
	}
}
