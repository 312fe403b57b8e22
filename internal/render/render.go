// Package render turns a laid-out agenda slot list into an SVG document.
// It implements the default paint path (row backgrounds, subject and time
// text, recurrence and continues markers) and the delegated path in which
// an external per-appointment builder supplies each row's content and
// this package only positions it.
package render

import (
	"fmt"
	"strings"
	"time"

	"agendacal/internal/agenda"
	"agendacal/internal/l10n"
	"agendacal/internal/model"
)

// Builder produces the SVG fragment for one appointment row. The
// fragment is emitted in slot-local coordinates; the renderer translates
// it to the slot rectangle. When a Builder is set, the renderer performs
// no default drawing.
type Builder func(selectedDate time.Time, a model.Appointment) string

// Defaults for the painted text.
const (
	defaultBackground = "#ffffff"
	textColor         = "#1a1a1a"
	infoColor         = "#666666"
	fontFamily        = "Helvetica, Arial, sans-serif"

	recurrenceGlyph = "⟳" // ⟳
	continuesGlyph  = "›" // ›
)

// Renderer paints agenda slots. It holds the optional builder as a
// rendering strategy selected once per pass, not via inheritance.
type Renderer struct {
	cfg     agenda.LayoutConfig
	builder Builder
}

// New returns a renderer for the given layout configuration.
func New(cfg agenda.LayoutConfig) *Renderer {
	if cfg.TextScale <= 0 {
		cfg.TextScale = 1
	}
	return &Renderer{cfg: cfg}
}

// SetBuilder installs (or, with nil, removes) the external row builder.
func (r *Renderer) SetBuilder(b Builder) {
	r.builder = b
}

// HasBuilder reports whether the delegated paint path is active.
func (r *Renderer) HasBuilder() bool {
	return r.builder != nil
}

// RenderSVG paints the slot list for the selected date and returns a
// complete SVG document. An empty slot list (no data, or nothing on the
// selected date) produces the single centered informational label.
func (r *Renderer) RenderSVG(slots []*agenda.AppointmentView, selectedDate time.Time) string {
	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%g" height="%g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, r.cfg.Width, r.cfg.Height, defaultBackground))

	painted := 0
	for _, slot := range slots {
		if slot.Appointment == nil || slot.Rect == nil {
			continue
		}
		if r.builder != nil {
			r.paintDelegated(&svg, slot, selectedDate)
		} else {
			r.paintRow(&svg, slot, selectedDate)
		}
		painted++
	}

	if painted == 0 {
		r.paintInfoLabel(&svg, selectedDate)
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

// paintDelegated positions externally built content at the slot
// rectangle and draws nothing itself.
func (r *Renderer) paintDelegated(svg *strings.Builder, slot *agenda.AppointmentView, selectedDate time.Time) {
	rect := slot.Rect
	svg.WriteString(fmt.Sprintf(`<g transform="translate(%g,%g)">`, rect.X, rect.Y))
	svg.WriteString(r.builder(selectedDate, *slot.Appointment))
	svg.WriteString("</g>\n")
}

// paintRow draws the default content for one non-empty slot: background,
// text block, and markers.
func (r *Renderer) paintRow(svg *strings.Builder, slot *agenda.AppointmentView, selectedDate time.Time) {
	a := slot.Appointment
	rect := *slot.Rect

	color := a.Color
	if color == "" {
		color = "#2b6cb0"
	}
	svg.WriteString(fmt.Sprintf(`<rect x="%g" y="%g" width="%g" height="%g" rx="%g" ry="%g" fill="%s"/>`,
		rect.X, rect.Y, rect.Width, rect.Height, rect.Radius, rect.Radius, color))
	svg.WriteString("\n")

	fontSize := fitFontSize(r.cfg.SubjectFontSize*r.cfg.TextScale, rect)
	if fontSize <= 0 {
		return
	}
	lineHeight := fontSize * lineHeightFactor
	textLeft := rect.X + agenda.Padding
	textWidth := rect.Width - 2*agenda.Padding
	if textWidth < 0 {
		textWidth = 0
	}

	var blockTop float64
	switch {
	case a.IsSpanned():
		blockTop = r.paintSpanningRow(svg, a, rect, selectedDate, fontSize, textLeft, textWidth)
	case a.AllDay:
		blockTop = r.paintAllDayRow(svg, a, rect, fontSize, lineHeight, textLeft, textWidth)
	default:
		blockTop = r.paintTimedRow(svg, a, rect, selectedDate, fontSize, lineHeight, textLeft, textWidth)
	}

	if a.ShowsRecurrenceGlyph() {
		r.paintRecurrenceGlyph(svg, rect, fontSize, blockTop)
	}
}

// paintSpanningRow draws the composed summary label, vertically centered,
// reserving trailing space for the continues marker when the appointment
// runs past the visible date. Returns the text block top.
func (r *Renderer) paintSpanningRow(svg *strings.Builder, a *model.Appointment, rect agenda.RoundedRect, selectedDate time.Time, fontSize, textLeft, textWidth float64) float64 {
	label := l10n.SpanSummary(*a)

	continues := !model.SameDate(selectedDate, a.End)
	avail := textWidth
	if continues {
		avail -= fontSize + agenda.Padding
		if avail < 0 {
			avail = 0
		}
	}

	blockTop := rect.Y + (rect.Height-fontSize)/2
	baseline := blockTop + fontSize*0.8
	writeText(svg, textLeft, baseline, fontSize, "#ffffff", truncateToWidth(label, avail, fontSize))

	if continues {
		iconX := rect.X + rect.Width - agenda.Padding - fontSize*0.6
		writeText(svg, iconX, baseline, fontSize, "#ffffff", continuesGlyph)
	}
	return blockTop
}

// paintAllDayRow draws the subject, vertically centered, with the line
// cap derived from the row height. Returns the text block top.
func (r *Renderer) paintAllDayRow(svg *strings.Builder, a *model.Appointment, rect agenda.RoundedRect, fontSize, lineHeight, textLeft, textWidth float64) float64 {
	maxLines := lineCap(rect.Height, lineHeight)
	lines := wrapText(a.Subject, textWidth, fontSize, maxLines)

	blockTop := rect.Y + (rect.Height-float64(len(lines))*lineHeight)/2
	for i, line := range lines {
		baseline := blockTop + float64(i)*lineHeight + fontSize*0.8
		writeText(svg, textLeft, baseline, fontSize, "#ffffff", line)
	}
	return blockTop
}

// paintTimedRow draws the subject above the time-range line, centered as
// a block. The subject gets one fewer line than the all-day case to
// leave room for the time line. Returns the text block top.
func (r *Renderer) paintTimedRow(svg *strings.Builder, a *model.Appointment, rect agenda.RoundedRect, selectedDate time.Time, fontSize, lineHeight, textLeft, textWidth float64) float64 {
	maxLines := lineCap(rect.Height, lineHeight)
	if maxLines > 1 {
		maxLines--
	}
	lines := wrapText(a.Subject, textWidth, fontSize, maxLines)

	timeFontSize := fitFontSize(r.cfg.TimeFontSize*r.cfg.TextScale, rect)
	if timeFontSize <= 0 || timeFontSize > fontSize {
		timeFontSize = fontSize
	}
	timeLine := truncateToWidth(l10n.FormatRange(*a, selectedDate, r.cfg.TimeFormat), textWidth, timeFontSize)

	blockHeight := float64(len(lines))*lineHeight + timeFontSize*lineHeightFactor
	blockTop := rect.Y + (rect.Height-blockHeight)/2
	for i, line := range lines {
		baseline := blockTop + float64(i)*lineHeight + fontSize*0.8
		writeText(svg, textLeft, baseline, fontSize, "#ffffff", line)
	}
	timeBaseline := blockTop + float64(len(lines))*lineHeight + timeFontSize*0.8
	writeText(svg, textLeft, timeBaseline, timeFontSize, "#f0f0f0", timeLine)
	return blockTop
}

// paintRecurrenceGlyph draws the small recurrence marker right-aligned in
// the row, aligned with the already-computed text block offset.
func (r *Renderer) paintRecurrenceGlyph(svg *strings.Builder, rect agenda.RoundedRect, fontSize, blockTop float64) {
	glyphSize := fontSize * 0.8
	x := rect.X + rect.Width - agenda.Padding - glyphSize*0.6
	baseline := blockTop + glyphSize*0.8
	writeText(svg, x, baseline, glyphSize, "#ffffff", recurrenceGlyph)
}

// paintInfoLabel draws the single centered informational label for the
// empty states.
func (r *Renderer) paintInfoLabel(svg *strings.Builder, selectedDate time.Time) {
	label := l10n.InfoLabel(r.cfg.Locale, selectedDate)
	fontSize := r.cfg.SubjectFontSize * r.cfg.TextScale
	if fontSize <= 0 {
		fontSize = 14
	}
	svg.WriteString(fmt.Sprintf(`<text x="%g" y="%g" text-anchor="middle" font-family="%s" font-size="%g" fill="%s">%s</text>`,
		r.cfg.Width/2, r.cfg.Height/2+fontSize*0.35, fontFamily, fontSize, infoColor, escapeXML(label)))
	svg.WriteString("\n")
}

// writeText emits one left-anchored SVG text element.
func writeText(svg *strings.Builder, x, baseline, fontSize float64, fill, text string) {
	svg.WriteString(fmt.Sprintf(`<text x="%g" y="%g" font-family="%s" font-size="%g" fill="%s">%s</text>`,
		x, baseline, fontFamily, fontSize, fill, escapeXML(text)))
	svg.WriteString("\n")
}
