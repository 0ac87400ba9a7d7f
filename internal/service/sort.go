// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/olegiv/eventhub/internal/model"
)

// Sortable event fields.
const (
	SortName        = "name"
	SortDescription = "description"
	SortDate        = "date"
	SortLocation    = "location"
	SortOrganizer   = "organizer"
)

var sortFields = map[string]bool{
	SortName:        true,
	SortDescription: true,
	SortDate:        true,
	SortLocation:    true,
	SortOrganizer:   true,
}

// SortKey orders events by one field.
type SortKey struct {
	Field string
	Desc  bool
}

func (k SortKey) String() string {
	if k.Desc {
		return k.Field + ":desc"
	}
	return k.Field
}

// DefaultSort orders by date, earliest first.
var DefaultSort = []SortKey{{Field: SortDate}}

// ParseSort parses "date:desc,name" into sort keys. Each field may appear
// once. An empty string yields DefaultSort.
func ParseSort(s string) ([]SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSort, nil
	}

	seen := make(map[string]bool)
	var keys []SortKey
	for _, part := range strings.Split(s, ",") {
		field, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		field = strings.ToLower(strings.TrimSpace(field))
		if !sortFields[field] {
			return nil, invalidSort(fmt.Sprintf("unknown sort field %q", field))
		}
		if seen[field] {
			return nil, invalidSort(fmt.Sprintf("duplicate sort field %q", field))
		}
		seen[field] = true

		key := SortKey{Field: field}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			key.Desc = true
		default:
			return nil, invalidSort(fmt.Sprintf("unknown sort direction %q", dir))
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// FormatSort is the inverse of ParseSort.
func FormatSort(keys []SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

func invalidSort(msg string) error {
	verr := model.NewValidationError()
	verr.Add("sort", msg)
	return verr
}

// SortEvents orders events in place by keys, then by id. Text fields use
// case-insensitive English collation.
func SortEvents(events []model.Event, keys []SortKey) {
	col := collate.New(language.English, collate.IgnoreCase)

	sort.SliceStable(events, func(i, j int) bool {
		a, b := &events[i], &events[j]
		for _, k := range keys {
			c := compareField(col, a, b, k.Field)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return a.ID < b.ID
	})
}

func compareField(col *collate.Collator, a, b *model.Event, field string) int {
	switch field {
	case SortName:
		return col.CompareString(a.Name, b.Name)
	case SortDescription:
		return col.CompareString(a.Description, b.Description)
	case SortLocation:
		return col.CompareString(a.Location, b.Location)
	case SortOrganizer:
		return col.CompareString(a.OrganizerName, b.OrganizerName)
	case SortDate:
		return a.Date.Compare(b.Date)
	}
	return 0
}
