// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/eventhub/internal/model"
	"github.com/olegiv/eventhub/internal/service"
)

// dateLayouts are the accepted event date inputs: a date field or a
// datetime-local field.
var dateLayouts = []string{time.DateOnly, "2006-01-02T15:04", "2006-01-02T15:04:05"}

// eventForm is the data of the events/form template.
type eventForm struct {
	// Event is nil when creating.
	Event       *model.Event
	Name        string
	Description string
	Date        string
	Location    string
	Version     int64
	Errors      map[string]string
}

// Action is the form's POST target.
func (f eventForm) Action() string {
	if f.Event == nil {
		return RouteEvents + RouteCreate
	}
	return RouteEvents + "/" + strconv.FormatInt(f.Event.ID, 10) + "/edit"
}

// eventFormFrom fills a form from a stored event.
func eventFormFrom(e *model.Event) eventForm {
	return eventForm{
		Event:       e,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date.Format(time.DateOnly),
		Location:    e.Location,
		Version:     e.Version,
	}
}

// parseEventForm reads the editable event fields from a parsed form.
// Organizer and status fields are never read. Date problems are returned
// as field errors.
func parseEventForm(r *http.Request) (service.EventInput, eventForm) {
	form := eventForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Date:        strings.TrimSpace(r.PostFormValue("date")),
		Location:    r.PostFormValue("location"),
		Errors:      make(map[string]string),
	}
	form.Version, _ = strconv.ParseInt(r.PostFormValue("version"), 10, 64)

	in := service.EventInput{
		Name:        form.Name,
		Description: form.Description,
		Location:    form.Location,
	}

	if form.Date != "" {
		date, err := parseDate(form.Date)
		if err != nil {
			form.Errors["date"] = "Date must be a valid date (yyyy-mm-dd)"
		} else {
			in.Date = date
		}
	}

	return in, form
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
