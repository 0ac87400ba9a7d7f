// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/render"
	"github.com/olegiv/eventhub/internal/service"
)

// EventsHandler serves the event registry and the public calendar.
type EventsHandler struct {
	events   *service.EventService
	calendar *service.CalendarService
	renderer *render.Renderer
	now      func() time.Time
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService, calendar *service.CalendarService, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{
		events:   events,
		calendar: calendar,
		renderer: renderer,
		now:      time.Now,
	}
}

// calendarMonth groups calendar entries for display.
type calendarMonth struct {
	Label   string
	Entries []service.CalendarEntry
}

// Home renders the dashboard of upcoming confirmed events.
// GET /
func (h *EventsHandler) Home(w http.ResponseWriter, r *http.Request) {
	today := h.now().UTC().Truncate(24 * time.Hour)
	events, err := h.events.ListUpcoming(r.Context(), today)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteRoot)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "pages/home", render.TemplateData{
		Title: "Dashboard",
		Data:  events,
	})
}

// Index lists the events the visitor may see.
// GET /events
func (h *EventsHandler) Index(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListVisible(r.Context(), middleware.GetUser(r))
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteRoot)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "events/index", render.TemplateData{
		Title: "Events",
		Data:  events,
	})
}

// Show renders one event. Unconfirmed events of other organizers are
// reported as missing.
// GET /events/{id}
func (h *EventsHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.events.Get(r.Context(), middleware.GetUser(r), id)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, redirectEvents)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "events/show", render.TemplateData{
		Title: event.Name,
		Data:  event,
	})
}

// CreateForm renders an empty event form.
// GET /events/create
func (h *EventsHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, eventForm{})
}

// Create stores a new pending event organized by the signed-in user.
// POST /events/create
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteEvents+RouteCreate, "Invalid form data")
		return
	}

	in, form := parseEventForm(r)
	if len(form.Errors) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	event, err := h.events.Create(r.Context(), middleware.GetUser(r), in)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			form.Errors = verr.Fields
			h.renderForm(w, r, http.StatusUnprocessableEntity, form)
			return
		}
		handleServiceError(w, r, h.renderer, err, redirectEvents)
		return
	}

	slog.Info("event created", "event_id", event.ID, "organizer_id", event.OrganizerID)
	flashSuccess(w, r, h.renderer, eventURL(event.ID),
		"Event created. It will appear on the calendar once an administrator confirms it.")
}

// EditForm renders the form for an existing event.
// GET /events/{id}/edit
func (h *EventsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.events.GetForEdit(r.Context(), middleware.GetUser(r), id)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, redirectEvents)
		return
	}

	h.renderForm(w, r, http.StatusOK, eventFormFrom(event))
}

// Update saves an edited event. The hidden version field must match the
// stored version.
// POST /events/{id}/edit
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}
	editURL := eventURL(id) + "/edit"

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, editURL, "Invalid form data")
		return
	}

	actor := middleware.GetUser(r)
	in, form := parseEventForm(r)
	if len(form.Errors) > 0 {
		h.renderEditForm(w, r, actor, id, form)
		return
	}

	event, err := h.events.Update(r.Context(), actor, id, form.Version, in)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			form.Errors = verr.Fields
			h.renderEditForm(w, r, actor, id, form)
			return
		}
		handleServiceError(w, r, h.renderer, err, editURL)
		return
	}

	flashSuccess(w, r, h.renderer, eventURL(event.ID), "Event updated.")
}

// renderEditForm re-renders a rejected edit, keeping the submitted values.
func (h *EventsHandler) renderEditForm(w http.ResponseWriter, r *http.Request, actor *model.User, id int64, form eventForm) {
	event, err := h.events.GetForEdit(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, redirectEvents)
		return
	}
	form.Event = event
	h.renderForm(w, r, http.StatusUnprocessableEntity, form)
}

func (h *EventsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form eventForm) {
	title := "Create event"
	if form.Event != nil {
		title = "Edit " + form.Event.Name
	}
	renderPage(w, r, h.renderer, status, "events/form", render.TemplateData{
		Title: title,
		Data:  form,
	})
}

// DeleteForm asks for confirmation before deleting.
// GET /events/{id}/delete
func (h *EventsHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.events.GetForEdit(r.Context(), middleware.GetUser(r), id)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, redirectEvents)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "events/delete", render.TemplateData{
		Title: "Delete " + event.Name,
		Data:  event,
	})
}

// Delete removes an event.
// POST /events/{id}/delete
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(r.Context(), middleware.GetUser(r), id); err != nil {
		handleServiceError(w, r, h.renderer, err, redirectEvents)
		return
	}

	flashSuccess(w, r, h.renderer, redirectEvents, "Event deleted.")
}

// Calendar renders confirmed events grouped by month.
// GET /events/calendar
func (h *EventsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	entries, err := h.calendar.Entries(r.Context())
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteRoot)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "events/calendar", render.TemplateData{
		Title: "Calendar",
		Data:  groupByMonth(entries),
	})
}

// CalendarFeed serves confirmed events as JSON.
// GET /events/calendar/feed
func (h *EventsHandler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	data, err := h.calendar.Feed(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to build calendar feed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// eventID parses the id URL parameter and answers 404 when it is malformed.
func (h *EventsHandler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := ParseIDParam(r)
	if err != nil || id <= 0 {
		renderError(w, r, h.renderer, http.StatusNotFound, "The page you requested could not be found.")
		return 0, false
	}
	return id, true
}

func eventURL(id int64) string {
	return RouteEvents + "/" + strconv.FormatInt(id, 10)
}

// groupByMonth splits date-ordered entries into consecutive months.
func groupByMonth(entries []service.CalendarEntry) []calendarMonth {
	var months []calendarMonth
	for _, e := range entries {
		label := e.Start
		if t, err := time.Parse(time.DateOnly, e.Start); err == nil {
			label = t.Format("January 2006")
		}
		if n := len(months); n == 0 || months[n-1].Label != label {
			months = append(months, calendarMonth{Label: label})
		}
		months[len(months)-1].Entries = append(months[len(months)-1].Entries, e)
	}
	return months
}
