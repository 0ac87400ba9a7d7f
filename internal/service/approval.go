// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/eventhub/internal/metrics"
	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/policy"
)

// ApprovalService runs the admin-only state transitions: account approval
// and rejection, and event confirmation or denial.
type ApprovalService struct {
	users    UserRepository
	events   EventRepository
	activity ActivityRecorder
	calendar CalendarInvalidator
}

// NewApprovalService creates an ApprovalService. activity and calendar may be nil.
func NewApprovalService(users UserRepository, events EventRepository, activity ActivityRecorder, calendar CalendarInvalidator) *ApprovalService {
	return &ApprovalService{
		users:    users,
		events:   events,
		activity: activity,
		calendar: calendar,
	}
}

// ApproveUser lets account userID sign in. Approving an approved account
// is a no-op.
func (s *ApprovalService) ApproveUser(ctx context.Context, actor *model.User, userID int64) (*model.User, error) {
	return s.setApproval(ctx, actor, userID, true)
}

// RejectUser revokes sign-in for account userID, whether it is pending or
// already approved. It can be undone with ApproveUser. Admin accounts
// cannot be rejected.
func (s *ApprovalService) RejectUser(ctx context.Context, actor *model.User, userID int64) (*model.User, error) {
	return s.setApproval(ctx, actor, userID, false)
}

func (s *ApprovalService) setApproval(ctx context.Context, actor *model.User, userID int64, approved bool) (*model.User, error) {
	if !policy.CanConfirm(actor) {
		return nil, model.ErrForbidden
	}

	target, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !approved && target.IsAdmin() {
		return nil, model.ErrForbidden
	}

	if target.IsApproved != approved {
		if err := s.users.SetApproved(ctx, userID, approved); err != nil {
			return nil, err
		}
		target.IsApproved = approved
	}

	action, message := "approve_user", "Account approved"
	if !approved {
		action, message = "reject_user", "Account rejected"
	}
	metrics.WorkflowTransitions.WithLabelValues(action).Inc()
	slog.Info(message, "user_id", userID, "admin_id", actor.ID)
	record(ctx, s.activity, model.ActivityLevelInfo, model.ActivityCategoryWorkflow, message,
		userRef(actor), map[string]any{"target_user_id": userID, "email": target.Email})

	return target, nil
}

// ConfirmEvent confirms (isConfirmed) or denies event eventID.
//
// Confirmation is final: once an event is confirmed every further call
// fails with model.ErrAlreadyFinalized and the event is left untouched.
// A denied event may still be confirmed later.
func (s *ApprovalService) ConfirmEvent(ctx context.Context, actor *model.User, eventID int64, isConfirmed bool) (*model.Event, error) {
	if !policy.CanConfirm(actor) {
		return nil, model.ErrForbidden
	}

	status, action, message := model.EventStatusDenied, "deny_event", "Event denied"
	if isConfirmed {
		status, action, message = model.EventStatusConfirmed, "confirm_event", "Event confirmed"
	}

	event, err := s.events.SetStatus(ctx, eventID, status)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyFinalized) {
			metrics.WorkflowTransitions.WithLabelValues("finalized_rejected").Inc()
			record(ctx, s.activity, model.ActivityLevelWarning, model.ActivityCategoryWorkflow,
				"Confirmation change rejected: event already confirmed", userRef(actor),
				map[string]any{"event_id": eventID, "requested": status})
		}
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues(action).Inc()
	slog.Info(message, "event_id", eventID, "admin_id", actor.ID)
	record(ctx, s.activity, model.ActivityLevelInfo, model.ActivityCategoryWorkflow, message,
		userRef(actor), map[string]any{"event_id": eventID, "name": event.Name})

	if event.IsConfirmed() && s.calendar != nil {
		s.calendar.Invalidate(ctx)
	}
	return event, nil
}

// RefreshPendingGauges updates the pending-approval gauges.
func (s *ApprovalService) RefreshPendingGauges(ctx context.Context) error {
	users, err := s.users.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("counting pending users: %w", err)
	}
	events, err := s.events.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("counting pending events: %w", err)
	}

	metrics.PendingUsers.Set(float64(users))
	metrics.PendingEvents.Set(float64(events))
	return nil
}
