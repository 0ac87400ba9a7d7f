// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/eventhub/internal/seo"
	"github.com/olegiv/eventhub/internal/service"
)

// SEOHandler serves robots.txt and the sitemap of confirmed events.
type SEOHandler struct {
	events  *service.EventService
	siteURL string
	isDev   bool
}

// NewSEOHandler creates a SEOHandler. An empty siteURL is derived from each request.
func NewSEOHandler(events *service.EventService, siteURL string, isDev bool) *SEOHandler {
	return &SEOHandler{events: events, siteURL: siteURL, isDev: isDev}
}

// Robots handles GET /robots.txt. Development sites are closed to crawlers.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.baseURL(r),
		DisallowAll: h.isDev,
	})))
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListConfirmed(r.Context())
	if err != nil {
		slog.Error("failed to list events for sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entries := make([]seo.SitemapEvent, 0, len(events))
	for _, e := range events {
		entries = append(entries, seo.SitemapEvent{ID: e.ID, UpdatedAt: e.UpdatedAt})
	}

	out, err := seo.GenerateSitemap(h.baseURL(r), entries)
	if err != nil {
		slog.Error("failed to build sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}

func (h *SEOHandler) baseURL(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
