// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/render"
	"github.com/olegiv/eventhub/internal/service"
	"github.com/olegiv/eventhub/internal/session"
)

// AccountHandler handles registration, sign-in and sign-out.
type AccountHandler struct {
	accounts        *service.AccountService
	activity        *service.ActivityService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAccountHandler creates a new AccountHandler. lp may be nil.
func NewAccountHandler(accounts *service.AccountService, activity *service.ActivityService, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AccountHandler {
	return &AccountHandler{
		accounts:        accounts,
		activity:        activity,
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// registerForm is the data of the account/register template.
type registerForm struct {
	Username string
	Email    string
	Errors   map[string]string
}

// loginForm is the data of the account/login template.
type loginForm struct {
	Email string
	Error string
}

// RegisterForm renders the sign-up page.
// GET /account/register
func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, registerForm{})
}

// Register handles the sign-up form submission. New accounts wait for
// administrator approval and are not signed in.
// POST /account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteAccount+RouteRegister, "Invalid form data")
		return
	}

	in := service.RegisterInput{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	form := registerForm{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Errors:   make(map[string]string),
	}

	_, err := h.accounts.Register(r.Context(), in)
	if err == nil {
		http.Redirect(w, r, redirectSignupSuccessful, http.StatusSeeOther)
		return
	}

	var verr *model.ValidationError
	switch {
	case errors.Is(err, model.ErrMismatch):
		form.Errors["confirmPassword"] = "Password and confirmation do not match"
	case errors.As(err, &verr):
		form.Errors = verr.Fields
	case errors.Is(err, model.ErrDuplicateEmail):
		form.Errors["email"] = "An account with this email already exists"
	default:
		logAndInternalError(w, "registration failed", "error", err)
		return
	}

	h.renderRegister(w, r, http.StatusUnprocessableEntity, form)
}

func (h *AccountHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form registerForm) {
	renderPage(w, r, h.renderer, status, "account/register", render.TemplateData{
		Title: "Register",
		Data:  form,
	})
}

// SignupSuccessful confirms a registration.
// GET /account/signup-successful
func (h *AccountHandler) SignupSuccessful(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusOK, "account/signup_successful", render.TemplateData{
		Title: "Registration received",
	})
}

// LoginForm renders the sign-in page. Signed-in users go to the dashboard.
// GET /account/login
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginForm{})
}

// Login handles the sign-in form submission.
// POST /account/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectLogin, "Invalid form data")
		return
	}

	email := model.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	form := loginForm{Email: email}

	if email == "" || password == "" {
		form.Error = msgLoginBlank
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.logAuth(r, model.ActivityLevelWarning, "Login attempt on locked account", nil, map[string]any{"email": email})
			form.Error = fmt.Sprintf("Too many failed attempts. Please try again in %s.", formatDuration(remaining))
			h.renderLogin(w, r, http.StatusTooManyRequests, form)
			return
		}
	}

	user, err := h.accounts.Authenticate(r.Context(), email, password)
	switch {
	case errors.Is(err, model.ErrNotApproved):
		h.logAuth(r, model.ActivityLevelInfo, "Login refused: account awaiting approval", nil, map[string]any{"email": email})
		form.Error = msgLoginNotApproved
		h.renderLogin(w, r, http.StatusForbidden, form)
		return
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrBadCredential):
		slog.Debug("login failed", "email", email)
		h.logAuth(r, model.ActivityLevelWarning, "Login failed: invalid credentials", nil, map[string]any{"email": email})
		form.Error = msgLoginInvalid
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				form.Error = fmt.Sprintf("Too many failed attempts. Please try again in %s.", formatDuration(lockDuration))
			}
		}
		h.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	case err != nil:
		logAndInternalError(w, "authentication failed", "error", err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := session.SignIn(r.Context(), h.sessionManager, user); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	h.logAuth(r, model.ActivityLevelInfo, "User logged in", &user.ID, map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, RouteRoot, "Welcome back, "+user.Username+"!")
}

func (h *AccountHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form loginForm) {
	renderPage(w, r, h.renderer, status, "account/login", render.TemplateData{
		Title: "Log in",
		Data:  form,
	})
}

// Logout ends the session. Calling it without a session is harmless.
// GET /account/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context(), h.sessionManager)
	if userID > 0 {
		h.logAuth(r, model.ActivityLevelInfo, "User logged out", &userID, nil)
	}

	if err := session.SignOut(r.Context(), h.sessionManager); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been logged out.", flashTypeInfo)
}

// Details shows the signed-in account.
// GET /account/details
func (h *AccountHandler) Details(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, http.StatusOK, "account/details", render.TemplateData{
		Title: "My account",
		Data:  middleware.GetUser(r),
	})
}

func (h *AccountHandler) logAuth(r *http.Request, level, message string, userID *int64, metadata map[string]any) {
	if h.activity == nil {
		return
	}
	if err := h.activity.LogAuth(r.Context(), level, message, userID, metadata); err != nil {
		slog.Debug("activity entry dropped", "message", message, "error", err)
	}
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
