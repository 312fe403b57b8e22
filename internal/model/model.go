package model

import "time"

// Occurrence represents a single concrete instance of a calendar event
// (after recurrence expansion and timezone normalization). It is the
// intermediate form between the ICS layer and the agenda view.
type Occurrence struct {
	SourceID string // calendar source ID
	UID      string // iCalendar UID

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// event, typically derived from the local start time.
	InstanceKey string

	Summary     string
	Description string
	Location    string

	AllDay bool

	// Recurring is true when the occurrence was produced from an RRULE.
	Recurring bool
	// RecurrenceInstance is true when this occurrence is an overridden
	// instance of a recurring event (RECURRENCE-ID).
	RecurrenceInstance bool

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}

// Appointment is the read-only input consumed by the agenda layout and
// paint code. One Appointment corresponds to one row in the agenda list
// for the selected date.
type Appointment struct {
	SourceID string
	UID      string

	Subject string

	// Start / End in the display timezone. Start is never after End.
	Start time.Time
	End   time.Time

	// AllDay marks an appointment with no specific time of day.
	AllDay bool

	// Spanning is the explicit cross-day marker. IsSpanned also derives
	// spanning from the start/end dates, so callers usually want that.
	Spanning bool

	// Recurring is true when the appointment has a recurrence rule.
	Recurring bool
	// RecurrenceInstance is true when this is a single overridden instance
	// of a recurring appointment.
	RecurrenceInstance bool

	// Color is the display color as a hex string, e.g. "#2b6cb0".
	Color string
}

// IsSpanned reports whether the appointment crosses a local-day boundary:
// either the explicit Spanning flag is set or the end date differs from
// the start date.
func (a Appointment) IsSpanned() bool {
	if a.Spanning {
		return true
	}
	return !SameDate(a.Start, a.End)
}

// ShowsRecurrenceGlyph reports whether the agenda row should carry the
// small recurrence marker.
func (a Appointment) ShowsRecurrenceGlyph() bool {
	return a.Recurring || a.RecurrenceInstance
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FromOccurrence builds an Appointment from an expanded occurrence. The
// color is resolved by the caller (per-source configuration).
func FromOccurrence(occ Occurrence, color string) Appointment {
	return Appointment{
		SourceID:           occ.SourceID,
		UID:                occ.UID,
		Subject:            occ.Summary,
		Start:              occ.Start,
		End:                occ.End,
		AllDay:             occ.AllDay,
		Recurring:          occ.Recurring,
		RecurrenceInstance: occ.RecurrenceInstance,
		Color:              color,
	}
}
