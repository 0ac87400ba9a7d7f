// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package policy holds every authorization decision for users and events.
// Handlers and services ask here instead of comparing roles themselves.
package policy

import "github.com/olegiv/eventhub/internal/model"

// CanMutate reports whether user may edit or delete event: admins always,
// otherwise only the organizer.
func CanMutate(user *model.User, event *model.Event) bool {
	if user == nil || event == nil {
		return false
	}
	return user.IsAdmin() || user.ID == event.OrganizerID
}

// CanConfirm reports whether user may drive approval transitions
// (confirming events, approving and rejecting accounts).
func CanConfirm(user *model.User) bool {
	return user.IsAdmin()
}

// CanAdminister reports whether user may open the administration pages.
func CanAdminister(user *model.User) bool {
	return user.IsAdmin()
}

// CanView reports whether user may see event. Unconfirmed events are
// visible to their organizer and admins only.
func CanView(user *model.User, event *model.Event) bool {
	if event == nil {
		return false
	}
	return event.IsConfirmed() || CanMutate(user, event)
}

// CanCreate reports whether user may create events.
func CanCreate(user *model.User) bool {
	return user != nil && user.IsApproved
}
