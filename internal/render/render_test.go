package render

import (
	"strings"
	"testing"
	"time"

	"agendacal/internal/agenda"
	"agendacal/internal/model"
)

var seoul = time.FixedZone("KST", 9*3600)

func testConfig() agenda.LayoutConfig {
	return agenda.LayoutConfig{
		Width:            480,
		Height:           800,
		TextScale:        1,
		TimedItemHeight:  60,
		AllDayItemHeight: 50,
		SubjectFontSize:  16,
		TimeFontSize:     13,
		Locale:           "en",
	}
}

func layoutFor(t *testing.T, appts []model.Appointment, day time.Time) []*agenda.AppointmentView {
	t.Helper()
	return agenda.NewEngine().ComputeSlots(appts, day, testConfig())
}

func TestRenderSVG_NoSelectedDate(t *testing.T) {
	r := New(testConfig())
	svg := r.RenderSVG(nil, time.Time{})

	if !strings.Contains(svg, "No selected date") {
		t.Errorf("missing no-selected-date label:\n%s", svg)
	}
	if strings.Contains(svg, `rx=`) {
		t.Errorf("unexpected row rectangle in empty state")
	}
}

func TestRenderSVG_NoEvents(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	r := New(testConfig())
	svg := r.RenderSVG(layoutFor(t, nil, day), day)

	if !strings.Contains(svg, "No events") {
		t.Errorf("missing no-events label:\n%s", svg)
	}
}

func TestRenderSVG_TimedRow(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	appts := []model.Appointment{{
		Subject: "Design sync",
		Start:   time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:     time.Date(2024, 5, 1, 10, 0, 0, 0, seoul),
		Color:   "#336699",
	}}

	svg := New(testConfig()).RenderSVG(layoutFor(t, appts, day), day)

	if !strings.Contains(svg, "Design sync") {
		t.Errorf("missing subject:\n%s", svg)
	}
	if !strings.Contains(svg, "09:00 AM - 10:00 AM") {
		t.Errorf("missing time range line:\n%s", svg)
	}
	if !strings.Contains(svg, `fill="#336699"`) {
		t.Errorf("missing appointment color fill:\n%s", svg)
	}
	if strings.Contains(svg, recurrenceGlyph) {
		t.Errorf("unexpected recurrence glyph on plain appointment")
	}
}

func TestRenderSVG_SpanningRowWithContinuesIcon(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	appts := []model.Appointment{{
		Subject: "Offsite",
		Start:   time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:     time.Date(2024, 5, 3, 17, 0, 0, 0, seoul),
	}}

	svg := New(testConfig()).RenderSVG(layoutFor(t, appts, day), day)

	// The summary label carries the composed date range.
	if !strings.Contains(svg, "Offsite (May 01 - May 03)") {
		t.Errorf("missing spanning summary label:\n%s", svg)
	}
	if !strings.Contains(svg, continuesGlyph) {
		t.Errorf("missing continues icon for appointment ending after the visible date:\n%s", svg)
	}
}

func TestRenderSVG_SpanningRowEndingOnVisibleDate(t *testing.T) {
	// Viewing the last day of the span: no continues icon.
	day := time.Date(2024, 5, 3, 0, 0, 0, 0, seoul)
	appts := []model.Appointment{{
		Subject: "Offsite",
		Start:   time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:     time.Date(2024, 5, 3, 17, 0, 0, 0, seoul),
	}}

	svg := New(testConfig()).RenderSVG(layoutFor(t, appts, day), day)
	if strings.Contains(svg, continuesGlyph) {
		t.Errorf("continues icon shown although the span ends on the visible date")
	}
}

func TestRenderSVG_RecurrenceGlyph(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	appts := []model.Appointment{{
		Subject:   "Standup",
		Start:     time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:       time.Date(2024, 5, 1, 9, 15, 0, 0, seoul),
		Recurring: true,
	}}

	svg := New(testConfig()).RenderSVG(layoutFor(t, appts, day), day)
	if !strings.Contains(svg, recurrenceGlyph) {
		t.Errorf("missing recurrence glyph:\n%s", svg)
	}
}

func TestRenderSVG_SubjectEscaped(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	appts := []model.Appointment{{
		Subject: `1:1 <Kim & Lee>`,
		Start:   time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:     time.Date(2024, 5, 1, 10, 0, 0, 0, seoul),
	}}

	svg := New(testConfig()).RenderSVG(layoutFor(t, appts, day), day)
	if strings.Contains(svg, "<Kim") {
		t.Errorf("subject not escaped:\n%s", svg)
	}
	if !strings.Contains(svg, "&lt;Kim &amp; Lee&gt;") {
		t.Errorf("escaped subject missing:\n%s", svg)
	}
}

func TestRenderSVG_ExternalBuilder(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	appts := []model.Appointment{
		{
			Subject: "A",
			Start:   time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
			End:     time.Date(2024, 5, 1, 10, 0, 0, 0, seoul),
		},
		{
			Subject: "B",
			Start:   time.Date(2024, 5, 1, 11, 0, 0, 0, seoul),
			End:     time.Date(2024, 5, 1, 12, 0, 0, 0, seoul),
		},
	}

	r := New(testConfig())
	r.SetBuilder(func(_ time.Time, a model.Appointment) string {
		return `<circle r="4" data-subject="` + a.Subject + `"/>`
	})
	svg := r.RenderSVG(layoutFor(t, appts, day), day)

	// Exactly one built fragment per slot, positioned via translate.
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("built fragment count = %d, want 2", got)
	}
	if got := strings.Count(svg, `<g transform="translate(`); got != 2 {
		t.Errorf("positioned group count = %d, want 2", got)
	}
	// No default painting alongside the delegated content.
	if strings.Contains(svg, `rx=`) {
		t.Errorf("default row rectangle painted despite external builder")
	}
	if strings.Contains(svg, "09:00 AM") {
		t.Errorf("default time line painted despite external builder")
	}
}

func TestRenderSVG_TinyRowDegradesFontSize(t *testing.T) {
	cfg := testConfig()
	cfg.TimedItemHeight = 8 // shorter than the 16pt subject font

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, seoul)
	appts := []model.Appointment{{
		Subject: "Tiny",
		Start:   time.Date(2024, 5, 1, 9, 0, 0, 0, seoul),
		End:     time.Date(2024, 5, 1, 10, 0, 0, 0, seoul),
	}}
	slots := agenda.NewEngine().ComputeSlots(appts, day, cfg)

	svg := New(cfg).RenderSVG(slots, day)
	if !strings.Contains(svg, `font-size="8"`) {
		t.Errorf("font size not degraded to row height:\n%s", svg)
	}
	if strings.Contains(svg, `font-size="16"`) {
		t.Errorf("full-size text painted in an 8-unit row:\n%s", svg)
	}
}
