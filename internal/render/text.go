package render

import (
	"math"
	"strings"

	"agendacal/internal/agenda"
)

// ellipsis is the two-character truncation marker appended to overflowing
// text.
const ellipsis = ".."

// lineHeightFactor converts a font size into the vertical advance of one
// text line.
const lineHeightFactor = 1.2

// estimateTextWidth estimates the rendered width of text in surface
// units. Average character width is about 0.6 of the font size, which is
// close enough for row-local truncation decisions on a fixed display.
func estimateTextWidth(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * fontSize * 0.6
}

// fitFontSize degrades the requested font size when the rectangle is
// smaller than the font in either dimension, so text never paints outside
// a very short or very narrow row.
func fitFontSize(requested float64, rect agenda.RoundedRect) float64 {
	size := requested
	if rect.Height < size {
		size = rect.Height
	}
	if rect.Width < size {
		size = rect.Width
	}
	if size < 0 {
		return 0
	}
	return size
}

// lineCap returns how many text lines fit in a row of the given height:
// floor((height − 2·padding) / lineHeight), never below one.
func lineCap(height, lineHeight float64) int {
	if lineHeight <= 0 {
		return 1
	}
	n := int(math.Floor((height - 2*agenda.Padding) / lineHeight))
	if n < 1 {
		return 1
	}
	return n
}

// truncateToWidth shortens text so that it fits maxWidth at the given
// font size, appending the ellipsis marker when anything was cut.
func truncateToWidth(text string, maxWidth, fontSize float64) string {
	if estimateTextWidth(text, fontSize) <= maxWidth {
		return text
	}
	runes := []rune(text)
	charWidth := fontSize * 0.6
	if charWidth <= 0 {
		return ""
	}
	keep := int(maxWidth/charWidth) - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	if keep > len(runes) {
		keep = len(runes)
	}
	return string(runes[:keep]) + ellipsis
}

// wrapText breaks text into at most maxLines lines that each fit
// maxWidth, breaking on word boundaries where possible. When lines must
// be dropped, the last kept line is re-truncated with the ellipsis
// marker so the cut is visible.
func wrapText(text string, maxWidth, fontSize float64, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	charWidth := fontSize * 0.6
	if charWidth <= 0 || maxWidth <= 0 {
		return []string{""}
	}
	maxChars := int(maxWidth / charWidth)
	if maxChars < 1 {
		maxChars = 1
	}

	// Greedy word wrap without a line limit first.
	words := strings.Fields(text)
	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len([]rune(candidate)) <= maxChars {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}

	// Clamp to the line budget; mark the cut on the last visible line.
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = truncateToWidth(lines[maxLines-1]+" "+ellipsis, maxWidth, fontSize)
	}

	// Individual over-long words still need hard truncation.
	for i := range lines {
		lines[i] = truncateToWidth(lines[i], maxWidth, fontSize)
	}
	return lines
}

// escapeXML escapes SVG-reserved characters so subject text cannot break
// the generated markup.
var escapeXML = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
).Replace
