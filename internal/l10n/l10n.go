// Package l10n supplies the localized strings, accessible-description
// composition, and time formatting the agenda view consumes. It is a
// small lookup layer, not a general i18n framework.
package l10n

import (
	"strings"
	"time"

	"agendacal/internal/agenda"
	"agendacal/internal/model"
)

// Default time patterns, matching common calendar UI conventions.
const (
	// PatternSameDay formats a time on the selected date, e.g. "09:00 AM".
	PatternSameDay = "hh:mm a"
	// PatternCrossDay formats a time on another date, e.g. "May 01, 09:00 AM".
	PatternCrossDay = "MMM dd, hh:mm a"
)

// Strings holds the informational labels for one locale.
type Strings struct {
	NoSelectedDate string
	NoEvents       string
	AllDay         string
	Continues      string
	Recurring      string
}

var table = map[string]Strings{
	"en": {
		NoSelectedDate: "No selected date",
		NoEvents:       "No events",
		AllDay:         "All day",
		Continues:      "continues",
		Recurring:      "recurring",
	},
	"ko": {
		NoSelectedDate: "선택된 날짜 없음",
		NoEvents:       "일정 없음",
		AllDay:         "종일",
		Continues:      "계속",
		Recurring:      "반복",
	},
	"de": {
		NoSelectedDate: "Kein Datum ausgewählt",
		NoEvents:       "Keine Termine",
		AllDay:         "Ganztägig",
		Continues:      "geht weiter",
		Recurring:      "wiederkehrend",
	},
}

// For returns the string table for the given locale, falling back to
// English for unknown codes. Locale codes are matched on the primary
// subtag ("ko-KR" resolves to "ko").
func For(locale string) Strings {
	if s, ok := table[locale]; ok {
		return s
	}
	if i := strings.IndexByte(locale, '-'); i > 0 {
		if s, ok := table[locale[:i]]; ok {
			return s
		}
	}
	return table["en"]
}

// Direction returns the reading direction for the locale. All shipped
// locales are left-to-right; the RTL branch covers future Arabic/Hebrew
// tables.
func Direction(locale string) agenda.TextDirection {
	primary := locale
	if i := strings.IndexByte(locale, '-'); i > 0 {
		primary = locale[:i]
	}
	switch primary {
	case "ar", "he", "fa":
		return agenda.DirectionRTL
	}
	return agenda.DirectionLTR
}

// patternReplacer translates calendar-style format tokens into Go
// reference-time layout fragments. Longest tokens first so "MMM" does not
// decay into "MM"+"M".
var patternReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"MMM", "Jan",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"hh", "03",
	"mm", "04",
	"ss", "05",
	"a", "PM",
)

// Layout converts a calendar-style pattern ("MMM dd, hh:mm a") into a Go
// time layout.
func Layout(pattern string) string {
	return patternReplacer.Replace(pattern)
}

// FormatTime renders t using a calendar-style pattern.
func FormatTime(pattern string, t time.Time) string {
	return t.Format(Layout(pattern))
}

// FormatRange renders "start – end" for a timed appointment. The pattern
// override, when non-empty, is used for both endpoints; otherwise each
// endpoint uses the same-day pattern when it falls on selectedDate and
// the cross-day pattern when it does not.
func FormatRange(a model.Appointment, selectedDate time.Time, override string) string {
	format := func(t time.Time) string {
		if override != "" {
			return FormatTime(override, t)
		}
		if model.SameDate(t, selectedDate) {
			return FormatTime(PatternSameDay, t)
		}
		return FormatTime(PatternCrossDay, t)
	}
	return format(a.Start) + " - " + format(a.End)
}

// SpanSummary composes the label painted on a spanning row, e.g.
// "Offsite (May 01 - May 03)".
func SpanSummary(a model.Appointment) string {
	const datePattern = "MMM dd"
	return a.Subject + " (" + FormatTime(datePattern, a.Start) + " - " + FormatTime(datePattern, a.End) + ")"
}

// Describe composes the accessible description for one appointment. The
// same label is exposed for every slot's semantics node, keeping the
// accessibility tree aligned with what is painted.
func Describe(locale string) agenda.DescribeFunc {
	strs := For(locale)
	return func(a model.Appointment, selectedDate time.Time) string {
		var b strings.Builder
		b.WriteString(a.Subject)
		switch {
		case a.IsSpanned():
			b.WriteString(", ")
			b.WriteString(FormatTime(PatternCrossDay, a.Start))
			b.WriteString(" - ")
			b.WriteString(FormatTime(PatternCrossDay, a.End))
		case a.AllDay:
			b.WriteString(", ")
			b.WriteString(strs.AllDay)
		default:
			b.WriteString(", ")
			b.WriteString(FormatRange(a, selectedDate, ""))
		}
		if a.ShowsRecurrenceGlyph() {
			b.WriteString(", ")
			b.WriteString(strs.Recurring)
		}
		return b.String()
	}
}

// InfoLabel returns the informational label for the empty states: no
// selected date when selectedDate is zero, no events otherwise.
func InfoLabel(locale string, selectedDate time.Time) string {
	strs := For(locale)
	if selectedDate.IsZero() {
		return strs.NoSelectedDate
	}
	return strs.NoEvents
}
