package agenda

import "math"

// Padding is the horizontal and vertical gap, in surface units, between
// the agenda edge and each row and between consecutive rows.
const Padding = 5

// maxCornerRadius caps the proportional corner rounding so short rows do
// not end up looking fully circular.
const maxCornerRadius = 5

// RoundedRect is an axis-aligned rounded rectangle in local surface
// coordinates.
type RoundedRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Corner rounding is ignored for hit testing; the full rectangle is the
// hit region.
func (r RoundedRect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// CornerRadius returns the rounding for a row of the given height:
// one tenth of the height, capped at maxCornerRadius and never negative.
func CornerRadius(height float64) float64 {
	r := math.Min(maxCornerRadius, 0.1*height)
	if r < 0 {
		return 0
	}
	return r
}

// SlotAt returns the first slot whose rectangle contains (x, y), or nil
// when the point falls outside every slot. Each slot rectangle is an
// independent hit region; misses fall through.
func SlotAt(slots []*AppointmentView, x, y float64) *AppointmentView {
	for _, s := range slots {
		if s.Appointment == nil || s.Rect == nil {
			continue
		}
		if s.Rect.Contains(x, y) {
			return s
		}
	}
	return nil
}
