// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/eventhub/internal/metrics"
	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/render"
	"github.com/olegiv/eventhub/internal/service"
	"github.com/olegiv/eventhub/internal/version"
)

// RequestTimeout bounds every request.
const RequestTimeout = 30 * time.Second

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	DB       *sql.DB
	Sessions *scs.SessionManager
	Renderer *render.Renderer
	Users    middleware.UserLoader

	Accounts *service.AccountService
	Events   *service.EventService
	Approval *service.ApprovalService
	Calendar *service.CalendarService
	Activity *service.ActivityService

	// LoginProtection may be nil to disable lockout.
	LoginProtection *middleware.LoginProtection
	// RateLimiter may be nil to disable the global per-IP limit.
	RateLimiter *middleware.RateLimiter
	// Cache is health-checked when not nil.
	Cache Pinger
	// Static serves /static/ when not nil.
	Static fs.FS

	IsDev          bool
	CSRFKey        []byte
	TrustedOrigins []string
	MetricsEnabled bool
	RequestLogging bool
	Version        version.Info

	// SiteURL is the public base URL; empty means derive it per request.
	SiteURL string
}

// NewRouter builds the application's HTTP handler.
func NewRouter(d Deps) http.Handler {
	accountHandler := NewAccountHandler(d.Accounts, d.Activity, d.Renderer, d.Sessions, d.LoginProtection)
	eventsHandler := NewEventsHandler(d.Events, d.Calendar, d.Renderer)
	adminHandler := NewAdminHandler(d.Accounts, d.Events, d.Approval, d.Activity, d.Renderer)
	healthHandler := NewHealthHandler(d.DB, d.Cache, d.Version)
	seoHandler := NewSEOHandler(d.Events, d.SiteURL, d.IsDev)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if d.RequestLogging {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(RequestTimeout))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.IsDev)))
	r.Use(middleware.RequestPath)
	r.Use(middleware.ClientIP)
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware())
	}

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/robots.txt", seoHandler.Robots)
	r.Get("/sitemap.xml", seoHandler.Sitemap)
	if d.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}
	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(d.Static)))
	}

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.LoadAndSave)
		r.Use(middleware.LoadUser(d.Sessions, d.Users))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(d.CSRFKey, d.IsDev, d.TrustedOrigins...)))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			renderError(w, r, d.Renderer, http.StatusNotFound, "The page you requested could not be found.")
		})

		r.Get("/health", healthHandler.Health)

		r.Route(RouteAccount, func(r chi.Router) {
			r.Get(RouteRegister, accountHandler.RegisterForm)
			r.Post(RouteRegister, accountHandler.Register)
			r.Get(RouteSignupSuccessful, accountHandler.SignupSuccessful)
			r.Get(RouteLogin, accountHandler.LoginForm)
			if d.LoginProtection != nil {
				r.With(d.LoginProtection.Middleware()).Post(RouteLogin, accountHandler.Login)
			} else {
				r.Post(RouteLogin, accountHandler.Login)
			}
			r.Get(RouteLogout, accountHandler.Logout)
			r.Post(RouteLogout, accountHandler.Logout)
			r.With(middleware.Auth).Get(RouteDetails, accountHandler.Details)
		})

		r.With(middleware.Auth).Get(RouteRoot, eventsHandler.Home)

		r.Route(RouteEvents, func(r chi.Router) {
			r.Get(RouteRoot, eventsHandler.Index)
			r.Get(RouteCalendar, eventsHandler.Calendar)
			r.Get(RouteCalendarFeed, eventsHandler.CalendarFeed)
			r.Get(RouteParamID, eventsHandler.Show)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth)
				r.Get(RouteCreate, eventsHandler.CreateForm)
				r.Post(RouteCreate, eventsHandler.Create)
				r.Get(RouteEdit, eventsHandler.EditForm)
				r.Post(RouteEdit, eventsHandler.Update)
				r.Get(RouteDelete, eventsHandler.DeleteForm)
				r.Post(RouteDelete, eventsHandler.Delete)
			})
		})

		r.Route(RouteAdmin, func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Activity))
			r.Get(RouteRoot, adminHandler.Dashboard)
			r.Get(RouteUsers, adminHandler.Users)
			r.Post(RouteApproveUser, adminHandler.ApproveUser)
			r.Post(RouteRejectUser, adminHandler.RejectUser)
			r.Get(RouteAdminEvents, adminHandler.Events)
			r.Post(RouteConfirmEvent, adminHandler.ConfirmEvent)
			r.Get(RouteActivity, adminHandler.Activity)
		})
	})

	return r
}
