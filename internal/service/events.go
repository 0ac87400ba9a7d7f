// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/olegiv/eventhub/internal/metrics"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/policy"
)

// EventInput holds the fields an organizer may set. Organizer and status
// are never taken from input.
type EventInput struct {
	Name        string    `form:"name" validate:"required,max=200"`
	Description string    `form:"description" validate:"max=5000"`
	Date        time.Time `form:"date" validate:"required"`
	Location    string    `form:"location" validate:"max=200"`
}

func (in *EventInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Date = in.Date.UTC()
}

// EventService is the event registry.
type EventService struct {
	events   EventRepository
	activity ActivityRecorder
	calendar CalendarInvalidator
	validate *validator.Validate
}

// NewEventService creates an EventService. activity and calendar may be nil.
func NewEventService(events EventRepository, activity ActivityRecorder, calendar CalendarInvalidator) *EventService {
	return &EventService{
		events:   events,
		activity: activity,
		calendar: calendar,
		validate: newValidator(),
	}
}

// Create stores a new pending event organized by actor.
func (s *EventService) Create(ctx context.Context, actor *model.User, in EventInput) (*model.Event, error) {
	if !policy.CanCreate(actor) {
		return nil, model.ErrForbidden
	}

	in.normalize()
	verr := model.NewValidationError()
	if err := validateStruct(s.validate, in, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, &model.Event{
		UID:         uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		OrganizerID: actor.ID,
	})
	if err != nil {
		return nil, err
	}

	metrics.EventMutations.WithLabelValues("create").Inc()
	record(ctx, s.activity, model.ActivityLevelInfo, model.ActivityCategoryEvent,
		"Event created", userRef(actor), map[string]any{"event_id": event.ID, "name": event.Name})

	return event, nil
}

// Get returns event id if actor may see it. Hidden events are reported as
// model.ErrNotFound.
func (s *EventService) Get(ctx context.Context, actor *model.User, id int64) (*model.Event, error) {
	event, err := s.events.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, event) {
		return nil, model.ErrNotFound
	}
	return event, nil
}

// GetForEdit returns event id if actor may change it. Anyone other than
// the organizer or an admin gets model.ErrForbidden, whatever the status.
func (s *EventService) GetForEdit(ctx context.Context, actor *model.User, id int64) (*model.Event, error) {
	event, err := s.events.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, event) {
		return nil, model.ErrForbidden
	}
	return event, nil
}

// Update changes the editable fields of event id. version is the version
// the editor loaded; a newer stored version yields model.ErrConcurrencyConflict.
func (s *EventService) Update(ctx context.Context, actor *model.User, id, version int64, in EventInput) (*model.Event, error) {
	existing, err := s.GetForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	verr := model.NewValidationError()
	if err := validateStruct(s.validate, in, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	changed := *existing
	changed.Name = in.Name
	changed.Description = in.Description
	changed.Date = in.Date
	changed.Location = in.Location
	changed.Version = version

	updated, err := s.events.Update(ctx, &changed)
	if err != nil {
		if errors.Is(err, model.ErrConcurrencyConflict) {
			metrics.EventMutations.WithLabelValues("conflict").Inc()
			slog.Info("event edit conflict", "event_id", id, "user_id", actor.ID, "version", version)
		}
		return nil, err
	}

	metrics.EventMutations.WithLabelValues("update").Inc()
	record(ctx, s.activity, model.ActivityLevelInfo, model.ActivityCategoryEvent,
		"Event updated", userRef(actor), map[string]any{"event_id": id, "version": updated.Version})

	if updated.IsConfirmed() {
		s.invalidateCalendar(ctx)
	}
	return updated, nil
}

// Delete removes event id.
func (s *EventService) Delete(ctx context.Context, actor *model.User, id int64) error {
	existing, err := s.GetForEdit(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	metrics.EventMutations.WithLabelValues("delete").Inc()
	record(ctx, s.activity, model.ActivityLevelInfo, model.ActivityCategoryEvent,
		"Event deleted", userRef(actor), map[string]any{"event_id": id, "name": existing.Name})

	s.invalidateCalendar(ctx)
	return nil
}

// ListVisible returns the events actor may see: everything for admins,
// otherwise confirmed events plus the actor's own.
func (s *EventService) ListVisible(ctx context.Context, actor *model.User) ([]model.Event, error) {
	switch {
	case policy.CanAdminister(actor):
		return s.events.List(ctx, model.EventFilter{})
	case actor != nil:
		return s.events.List(ctx, model.EventFilter{VisibleTo: actor.ID})
	default:
		return s.events.List(ctx, model.EventFilter{ConfirmedOnly: true})
	}
}

// ListConfirmed returns the public calendar.
func (s *EventService) ListConfirmed(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx, model.EventFilter{ConfirmedOnly: true})
}

// ListUpcoming returns confirmed events dated at or after from.
func (s *EventService) ListUpcoming(ctx context.Context, from time.Time) ([]model.Event, error) {
	return s.events.List(ctx, model.EventFilter{ConfirmedOnly: true, From: from})
}

// ListSorted returns every event ordered by keys. Admins only.
func (s *EventService) ListSorted(ctx context.Context, actor *model.User, keys []SortKey) ([]model.Event, error) {
	if !policy.CanAdminister(actor) {
		return nil, model.ErrForbidden
	}

	events, err := s.events.List(ctx, model.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	if len(keys) == 0 {
		keys = DefaultSort
	}
	SortEvents(events, keys)
	return events, nil
}

func (s *EventService) invalidateCalendar(ctx context.Context) {
	if s.calendar != nil {
		s.calendar.Invalidate(ctx)
	}
}
