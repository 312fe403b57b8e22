package agenda

import "time"

// UpdateAction is the outcome of diffing two view snapshots.
type UpdateAction int

const (
	// UpdateNone means the snapshots are identical; nothing to do.
	UpdateNone UpdateAction = iota
	// UpdateRepaint means geometry is unchanged but the painted content
	// (colors, fonts, locale, format) differs.
	UpdateRepaint
	// UpdateRelayout means slot geometry must be recomputed before
	// painting.
	UpdateRelayout
)

// Snapshot captures the inputs that can change between updates. Instead
// of per-property setters with scattered side effects, the host takes a
// snapshot before and after an update and asks Diff for a single
// decision.
//
// Appointments and Builder are identity tokens: the host supplies any
// comparable value that changes when the appointment list or the external
// row builder is swapped (typically a pointer or a generation counter).
type Snapshot struct {
	Appointments any
	SelectedDate time.Time
	Builder      any

	ViewWidth      float64
	ViewHeight     float64
	TimeLabelWidth float64

	// Repaint-only properties.
	TextScale        float64
	TimedItemHeight  float64
	AllDayItemHeight float64
	SubjectFontSize  float64
	TimeFontSize     float64
	Locale           string
	TimeFormat       string
	WideLayout       bool
}

// Diff compares two snapshots and returns the required update action.
// Relayout is triggered only by the list identity, selected date, time
// label width, viewport size, or builder changing; any other difference
// is a repaint.
func Diff(old, next Snapshot) UpdateAction {
	if old.Appointments != next.Appointments ||
		!old.SelectedDate.Equal(next.SelectedDate) ||
		old.Builder != next.Builder ||
		old.ViewWidth != next.ViewWidth ||
		old.ViewHeight != next.ViewHeight ||
		old.TimeLabelWidth != next.TimeLabelWidth {
		return UpdateRelayout
	}
	if old.TextScale != next.TextScale ||
		old.TimedItemHeight != next.TimedItemHeight ||
		old.AllDayItemHeight != next.AllDayItemHeight ||
		old.SubjectFontSize != next.SubjectFontSize ||
		old.TimeFontSize != next.TimeFontSize ||
		old.Locale != next.Locale ||
		old.TimeFormat != next.TimeFormat ||
		old.WideLayout != next.WideLayout {
		return UpdateRepaint
	}
	return UpdateNone
}
