package ics

import (
	"sort"
	"strings"
	"time"

	"agendacal/internal/model"
)

// defaultColor is used for sources with no configured color.
const defaultColor = "#2b6cb0"

// highlightColor is the color applied when a subject matches a highlight
// keyword (holidays, important items, etc.).
const highlightColor = "#c53030"

// DayFilter maps expanded occurrences to the appointment list the agenda
// view consumes for one selected date.
type DayFilter struct {
	// Colors maps source ID to display color.
	Colors map[string]string
	// HighlightKeywords force the highlight color when a subject contains
	// any of them (case-insensitive).
	HighlightKeywords []string
	// ShowAllDay includes all-day occurrences when true.
	ShowAllDay bool
}

// AppointmentsForDay returns the appointments whose occupied range
// intersects the selected date's local day, sorted by start time. The
// agenda layout engine re-sorts with its full three-key ordering anyway;
// pre-sorting here just keeps the list stable for callers that log or
// cache it.
func (f DayFilter) AppointmentsForDay(occs []model.Occurrence, selectedDate time.Time) []model.Appointment {
	if selectedDate.IsZero() {
		return nil
	}

	loc := selectedDate.Location()
	dayStart := time.Date(selectedDate.Year(), selectedDate.Month(), selectedDate.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	out := make([]model.Appointment, 0, len(occs))
	for _, occ := range occs {
		if occ.AllDay && !f.ShowAllDay {
			continue
		}
		// Half-open intersection with [dayStart, dayEnd).
		if !occ.Start.Before(dayEnd) || !occ.End.After(dayStart) {
			continue
		}
		out = append(out, model.FromOccurrence(occ, f.colorFor(occ)))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// colorFor resolves the display color for one occurrence: highlight
// keywords win, then the per-source color, then the default.
func (f DayFilter) colorFor(occ model.Occurrence) string {
	lower := strings.ToLower(occ.Summary)
	for _, kw := range f.HighlightKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return highlightColor
		}
	}
	if c, ok := f.Colors[occ.SourceID]; ok && c != "" {
		return c
	}
	return defaultColor
}
