// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/render"
)

// errorPage is the data of the pages/error template.
type errorPage struct {
	Status  int
	Message string
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeSuccess)
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// renderPage writes a page and falls back to a plain 500 when the template fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// renderError writes the error page with the given status.
func renderError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, message string) {
	renderPage(w, r, renderer, status, "pages/error", render.TemplateData{
		Title: http.StatusText(status),
		Data:  errorPage{Status: status, Message: message},
	})
}

// handleServiceError answers a failed service call on a page request.
// Conflicts and finalized events go back to redirectURL with a flash.
func handleServiceError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, err error, redirectURL string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		renderError(w, r, renderer, http.StatusNotFound, "The page you requested could not be found.")
	case errors.Is(err, model.ErrForbidden):
		renderError(w, r, renderer, http.StatusForbidden, "You are not allowed to do that.")
	case errors.Is(err, model.ErrConcurrencyConflict):
		flashError(w, r, renderer, redirectURL,
			"This event was changed by someone else. Review the latest version and try again.")
	case errors.Is(err, model.ErrAlreadyFinalized):
		flashError(w, r, renderer, redirectURL,
			"This event is already confirmed and can no longer be changed.")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		renderError(w, r, renderer, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}
