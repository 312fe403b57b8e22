package agenda

import (
	"sort"
	"time"

	"agendacal/internal/model"
)

// AppointmentView binds one appointment to its computed rectangle. It is
// the unit of view recycling: the engine never destroys a view, it only
// clears the appointment reference and hands the record out again on the
// next layout pass.
type AppointmentView struct {
	// Appointment is nil for a free slot.
	Appointment *model.Appointment
	// Rect is the computed rounded rectangle, nil until the slot has been
	// laid out at least once after being bound.
	Rect *RoundedRect
	// CanReuse marks a slot whose appointment reference has been cleared.
	CanReuse bool
}

// Clear releases the slot's appointment reference and marks it reusable.
// The backing record stays in the engine's slot list.
func (v *AppointmentView) Clear() {
	v.Appointment = nil
	v.CanReuse = true
}

// LayoutConfig is the sizing input for one layout pass. It is treated as
// immutable while the pass runs.
type LayoutConfig struct {
	// Width / Height of the available surface in surface units.
	Width  float64
	Height float64

	// TextScale multiplies the configured font sizes.
	TextScale float64

	// TimedItemHeight is the row height for timed, non-spanning items.
	TimedItemHeight float64
	// AllDayItemHeight is the row height for all-day and spanning items.
	AllDayItemHeight float64

	// TimeLabelWidth is the width reserved for the time column by the
	// hosting view. It does not affect row geometry but changing it
	// requires a relayout of the host.
	TimeLabelWidth float64

	// SubjectFontSize / TimeFontSize are the base font sizes before
	// TextScale is applied.
	SubjectFontSize float64
	TimeFontSize    float64

	// Locale is a BCP 47-ish locale code, e.g. "en" or "ko".
	Locale string
	// TimeFormat optionally overrides the default time pattern.
	TimeFormat string

	// WideLayout selects the alternate sizing mode in which all-day and
	// spanning items use the timed height. No shipped surface enables it
	// yet; it is kept as a toggle rather than a dead branch.
	WideLayout bool
}

// itemHeight returns the row height for one appointment under cfg.
func itemHeight(cfg LayoutConfig, a *model.Appointment) float64 {
	if (a.AllDay || a.IsSpanned()) && !cfg.WideLayout {
		return cfg.AllDayItemHeight
	}
	return cfg.TimedItemHeight
}

// Engine owns the slot arena and computes agenda geometry. It is not safe
// for concurrent use; layout, paint and semantics all run on the same
// goroutine in response to state updates.
type Engine struct {
	slots []*AppointmentView
}

// NewEngine returns an engine with an empty slot arena.
func NewEngine() *Engine {
	return &Engine{}
}

// SlotCount returns the size of the backing arena, including free slots.
// It only ever grows.
func (e *Engine) SlotCount() int {
	return len(e.slots)
}

// ComputeSlots lays out the agenda for one day and returns the bound
// slots in paint order.
//
// Ordering is a total order applied with a stable sort: ascending start
// time, then non-all-day before all-day, then non-spanning before
// spanning; input order breaks remaining ties.
//
// A nil or empty appointment list, or a zero selectedDate, yields no
// slots; the renderer shows the informational label for that state.
//
// Slot reuse is positional first-fit: every slot is reset to free at the
// start of the pass, then reassigned in sequence. A given appointment may
// therefore be served by a different slot record across passes; only the
// paint order is stable, not slot identity per appointment.
func (e *Engine) ComputeSlots(appointments []model.Appointment, selectedDate time.Time, cfg LayoutConfig) []*AppointmentView {
	for _, s := range e.slots {
		s.Clear()
	}

	if len(appointments) == 0 || selectedDate.IsZero() {
		return nil
	}

	ordered := make([]model.Appointment, len(appointments))
	copy(ordered, appointments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return appointmentLess(ordered[i], ordered[j])
	})

	rowWidth := cfg.Width - 2*Padding
	if rowWidth < 0 {
		rowWidth = 0
	}

	out := make([]*AppointmentView, 0, len(ordered))
	y := float64(Padding)
	for i := range ordered {
		a := &ordered[i]
		h := itemHeight(cfg, a)
		if h < 0 {
			h = 0
		}

		slot := e.acquire()
		slot.Appointment = a
		slot.CanReuse = false
		slot.Rect = &RoundedRect{
			X:      Padding,
			Y:      y,
			Width:  rowWidth,
			Height: h,
			Radius: CornerRadius(h),
		}
		y += h + Padding
		out = append(out, slot)
	}

	return out
}

// acquire returns the first free slot in the arena, appending a new
// record only when none is free. This bounds allocation churn to the net
// growth in appointment count across updates.
func (e *Engine) acquire() *AppointmentView {
	for _, s := range e.slots {
		if s.Appointment == nil {
			return s
		}
	}
	s := &AppointmentView{}
	e.slots = append(e.slots, s)
	return s
}

// appointmentLess implements the three-key agenda ordering.
func appointmentLess(a, b model.Appointment) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if a.AllDay != b.AllDay {
		return !a.AllDay
	}
	aSpan := a.IsSpanned()
	bSpan := b.IsSpanned()
	if aSpan != bSpan {
		return !aSpan
	}
	return false
}
