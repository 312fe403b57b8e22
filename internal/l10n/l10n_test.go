package l10n

import (
	"strings"
	"testing"
	"time"

	"agendacal/internal/agenda"
	"agendacal/internal/model"
)

var seoul = time.FixedZone("KST", 9*3600)

func TestLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"hh:mm a", "03:04 PM"},
		{"MMM dd, hh:mm a", "Jan 02, 03:04 PM"},
		{"yyyy-MM-dd HH:mm:ss", "2006-01-02 15:04:05"},
	}
	for _, tt := range tests {
		if got := Layout(tt.pattern); got != tt.want {
			t.Errorf("Layout(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, seoul)
	if got := FormatTime(PatternSameDay, at); got != "09:30 AM" {
		t.Errorf("FormatTime same-day = %q", got)
	}
	if got := FormatTime(PatternCrossDay, at); got != "May 01, 09:30 AM" {
		t.Errorf("FormatTime cross-day = %q", got)
	}
}

func TestFormatRange(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	sameDay := model.Appointment{
		Start: time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:   time.Date(2024, 5, 1, 10, 0, 0, 0, seoul),
	}
	if got := FormatRange(sameDay, day, ""); got != "09:00 AM - 10:00 AM" {
		t.Errorf("same-day range = %q", got)
	}

	// An endpoint on another date switches that endpoint to the
	// cross-day pattern.
	crossDay := model.Appointment{
		Start: time.Date(2024, 5, 1, 23, 0, 0, 0, seoul),
		End:   time.Date(2024, 5, 2, 1, 0, 0, 0, seoul),
	}
	if got := FormatRange(crossDay, day, ""); got != "11:00 PM - May 02, 01:00 AM" {
		t.Errorf("cross-day range = %q", got)
	}

	if got := FormatRange(sameDay, day, "HH:mm"); got != "09:00 - 10:00" {
		t.Errorf("overridden range = %q", got)
	}
}

func TestSpanSummary(t *testing.T) {
	a := model.Appointment{
		Subject: "Offsite",
		Start:   time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:     time.Date(2024, 5, 3, 17, 0, 0, 0, seoul),
	}
	if got := SpanSummary(a); got != "Offsite (May 01 - May 03)" {
		t.Errorf("SpanSummary = %q", got)
	}
}

func TestFor_Fallback(t *testing.T) {
	if got := For("ko").NoEvents; got != "일정 없음" {
		t.Errorf("For(ko) = %q", got)
	}
	if got := For("ko-KR").NoEvents; got != "일정 없음" {
		t.Errorf("For(ko-KR) did not resolve the primary subtag: %q", got)
	}
	if got := For("xx").NoEvents; got != "No events" {
		t.Errorf("For(xx) did not fall back to English: %q", got)
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		locale string
		want   agenda.TextDirection
	}{
		{"en", agenda.DirectionLTR},
		{"ko-KR", agenda.DirectionLTR},
		{"ar", agenda.DirectionRTL},
		{"he-IL", agenda.DirectionRTL},
	}
	for _, tt := range tests {
		if got := Direction(tt.locale); got != tt.want {
			t.Errorf("Direction(%q) = %v, want %v", tt.locale, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	describe := Describe("en")

	timed := model.Appointment{
		Subject:   "Standup",
		Start:     time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:       time.Date(2024, 5, 1, 9, 15, 0, 0, seoul),
		Recurring: true,
	}
	got := describe(timed, day)
	if !strings.Contains(got, "Standup") || !strings.Contains(got, "09:00 AM - 09:15 AM") {
		t.Errorf("timed description = %q", got)
	}
	if !strings.Contains(got, "recurring") {
		t.Errorf("recurring marker missing: %q", got)
	}

	allDay := model.Appointment{
		Subject: "Holiday",
		Start:   day,
		End:     time.Date(2024, 5, 1, 23, 59, 59, 0, seoul),
		AllDay:  true,
	}
	got = describe(allDay, day)
	if !strings.Contains(got, "All day") {
		t.Errorf("all-day description = %q", got)
	}
}

func TestInfoLabel(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	if got := InfoLabel("en", time.Time{}); got != "No selected date" {
		t.Errorf("zero date label = %q", got)
	}
	if got := InfoLabel("en", day); got != "No events" {
		t.Errorf("non-zero date label = %q", got)
	}
	if got := InfoLabel("ko", day); got != "일정 없음" {
		t.Errorf("localized label = %q", got)
	}
}
