package render

import (
	"strings"
	"testing"

	"agendacal/internal/agenda"
)

func TestFitFontSize(t *testing.T) {
	tests := []struct {
		name      string
		requested float64
		rect      agenda.RoundedRect
		want      float64
	}{
		{"fits", 16, agenda.RoundedRect{Width: 470, Height: 60}, 16},
		{"short row", 16, agenda.RoundedRect{Width: 470, Height: 8}, 8},
		{"narrow row", 16, agenda.RoundedRect{Width: 10, Height: 60}, 10},
		{"degenerate", 16, agenda.RoundedRect{Width: 0, Height: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitFontSize(tt.requested, tt.rect); got != tt.want {
				t.Errorf("fitFontSize(%g, %+v) = %g, want %g", tt.requested, tt.rect, got, tt.want)
			}
		})
	}
}

func TestLineCap(t *testing.T) {
	tests := []struct {
		name       string
		height     float64
		lineHeight float64
		want       int
	}{
		{"two lines", 60, 19.2, 2},
		{"one line", 30, 19.2, 1},
		{"never zero", 8, 19.2, 1},
		{"zero line height", 60, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lineCap(tt.height, tt.lineHeight); got != tt.want {
				t.Errorf("lineCap(%g, %g) = %d, want %d", tt.height, tt.lineHeight, got, tt.want)
			}
		})
	}
}

func TestTruncateToWidth(t *testing.T) {
	// 10pt font, char width 6: "hello world" is 66 wide.
	if got := truncateToWidth("hello world", 100, 10); got != "hello world" {
		t.Errorf("fitting text changed: %q", got)
	}

	got := truncateToWidth("hello world", 42, 10)
	if !strings.HasSuffix(got, ellipsis) {
		t.Errorf("truncated text missing ellipsis: %q", got)
	}
	// 42/6 = 7 characters of budget, two spent on the marker.
	if got != "hello.." {
		t.Errorf("truncateToWidth = %q, want %q", got, "hello..")
	}

	if got := truncateToWidth("hello", 1, 10); got != ellipsis {
		t.Errorf("tiny budget = %q, want bare ellipsis", got)
	}
}

func TestWrapText(t *testing.T) {
	// 10pt font, char width 6, 90 wide: 15 characters per line.
	lines := wrapText("alpha beta gamma delta", 90, 10, 4)
	want := []string{"alpha beta", "gamma delta"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapText_ClampMarksCut(t *testing.T) {
	lines := wrapText("alpha beta gamma delta epsilon", 90, 10, 2)
	if len(lines) != 2 {
		t.Fatalf("wrapText lines = %v, want exactly 2", lines)
	}
	if !strings.HasSuffix(lines[1], ellipsis) {
		t.Errorf("last visible line missing cut marker: %q", lines[1])
	}
}

func TestWrapText_OverlongWord(t *testing.T) {
	lines := wrapText("antidisestablishmentarianism", 60, 10, 2)
	if len(lines) != 1 {
		t.Fatalf("wrapText lines = %v, want 1", lines)
	}
	if !strings.HasSuffix(lines[0], ellipsis) {
		t.Errorf("over-long word not truncated: %q", lines[0])
	}
	if estimateTextWidth(lines[0], 10) > 60 {
		t.Errorf("truncated word still too wide: %q", lines[0])
	}
}

func TestWrapText_Empty(t *testing.T) {
	lines := wrapText("", 90, 10, 2)
	if len(lines) != 1 || lines[0] != "" {
		t.Errorf("wrapText(\"\") = %v, want single empty line", lines)
	}
}
