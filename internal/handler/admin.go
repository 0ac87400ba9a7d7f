// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/olegiv/eventhub/internal/middleware"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/render"
	"github.com/olegiv/eventhub/internal/service"
)

// ActivityPerPage is the page size of the activity log.
const ActivityPerPage = 50

// AdminHandler serves the administrator pages and workflow actions.
type AdminHandler struct {
	accounts *service.AccountService
	events   *service.EventService
	approval *service.ApprovalService
	activity *service.ActivityService
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accounts *service.AccountService, events *service.EventService, approval *service.ApprovalService, activity *service.ActivityService, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		events:   events,
		approval: approval,
		activity: activity,
		renderer: renderer,
	}
}

// dashboardData is the data of the admin/dashboard template.
type dashboardData struct {
	PendingUsers  []model.User
	PendingEvents []model.Event
	TotalUsers    int
	TotalEvents   int
}

// adminEventsData is the data of the admin/events template.
type adminEventsData struct {
	Events    []model.Event
	Sort      string
	SortError string
}

// activityData is the data of the admin/activity template.
type activityData struct {
	Items      []model.Activity
	Pagination Pagination
}

// Dashboard lists what is waiting for a decision.
// GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUser(r)

	users, err := h.accounts.ListUsers(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteRoot)
		return
	}
	events, err := h.events.ListSorted(r.Context(), actor, service.DefaultSort)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteRoot)
		return
	}

	data := dashboardData{TotalUsers: len(users), TotalEvents: len(events)}
	for _, u := range users {
		if !u.IsApproved {
			data.PendingUsers = append(data.PendingUsers, u)
		}
	}
	for _, e := range events {
		if e.Status == model.EventStatusPending {
			data.PendingEvents = append(data.PendingEvents, e)
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/dashboard", render.TemplateData{
		Title: "Administration",
		Data:  data,
	})
}

// Users lists all accounts, pending ones first.
// GET /admin/users
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context(), middleware.GetUser(r))
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteRoot)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/users", render.TemplateData{
		Title: "Users",
		Data:  users,
	})
}

// ApproveUser lets an account sign in.
// POST /admin/approveUser/{id}
func (h *AdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

// RejectUser revokes an account's sign-in.
// POST /admin/rejectUser/{id}
func (h *AdminHandler) RejectUser(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *AdminHandler) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	id, err := ParseIDParam(r)
	if err != nil || id <= 0 {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}

	actor := middleware.GetUser(r)
	var user *model.User
	if approved {
		user, err = h.approval.ApproveUser(r.Context(), actor, id)
	} else {
		user, err = h.approval.RejectUser(r.Context(), actor, id)
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		flashError(w, r, h.renderer, redirectAdminUsers, "User not found")
	case errors.Is(err, model.ErrForbidden) && !approved:
		flashError(w, r, h.renderer, redirectAdminUsers, "Administrator accounts cannot be rejected")
	case err != nil:
		handleServiceError(w, r, h.renderer, err, redirectAdminUsers)
	case approved:
		flashSuccess(w, r, h.renderer, redirectAdminUsers, "Account "+user.Email+" approved")
	default:
		flashSuccess(w, r, h.renderer, redirectAdminUsers, "Account "+user.Email+" rejected")
	}
}

// Events lists every event ordered by the sort query parameter, for
// example ?sort=date:desc,name.
// GET /admin/events
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	data := adminEventsData{Sort: r.URL.Query().Get("sort")}

	keys, err := service.ParseSort(data.Sort)
	if err != nil {
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			handleServiceError(w, r, h.renderer, err, RouteRoot)
			return
		}
		data.SortError = verr.Fields["sort"]
		keys = nil
	}
	if len(keys) == 0 {
		keys = service.DefaultSort
	}
	data.Sort = service.FormatSort(keys)

	data.Events, err = h.events.ListSorted(r.Context(), middleware.GetUser(r), keys)
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteRoot)
		return
	}

	status := http.StatusOK
	if data.SortError != "" {
		status = http.StatusBadRequest
	}
	renderPage(w, r, h.renderer, status, "admin/events", render.TemplateData{
		Title: "All events",
		Data:  data,
	})
}

// ConfirmEvent confirms or denies an event. Confirmed events cannot be
// changed again.
// POST /admin/confirmEvent/{id}?isConfirmed=true|false
func (h *AdminHandler) ConfirmEvent(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil || id <= 0 {
		flashError(w, r, h.renderer, redirectAdminEvents, "Invalid event ID")
		return
	}

	isConfirmed, err := strconv.ParseBool(r.FormValue("isConfirmed"))
	if err != nil {
		http.Error(w, "isConfirmed must be true or false", http.StatusBadRequest)
		return
	}

	event, err := h.approval.ConfirmEvent(r.Context(), middleware.GetUser(r), id, isConfirmed)
	switch {
	case errors.Is(err, model.ErrNotFound):
		flashError(w, r, h.renderer, redirectAdminEvents, "Event not found")
	case err != nil:
		handleServiceError(w, r, h.renderer, err, redirectAdminEvents)
	case isConfirmed:
		flashSuccess(w, r, h.renderer, redirectAdminEvents, "Event \""+event.Name+"\" confirmed")
	default:
		flashSuccess(w, r, h.renderer, redirectAdminEvents, "Event \""+event.Name+"\" denied")
	}
}

// Activity pages through the audit log.
// GET /admin/activity
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	total, err := h.activity.Count(r.Context())
	if err != nil {
		slog.Error("failed to count activity", "error", err)
		handleServiceError(w, r, h.renderer, err, RouteAdmin)
		return
	}

	p := BuildPagination(ParsePageParam(r), int(total), ActivityPerPage, RouteAdmin+RouteActivity, r.URL.Query())
	items, err := h.activity.List(r.Context(), p.PerPage, p.Offset())
	if err != nil {
		handleServiceError(w, r, h.renderer, err, RouteAdmin)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/activity", render.TemplateData{
		Title: "Activity",
		Data:  activityData{Items: items, Pagination: p},
	})
}
