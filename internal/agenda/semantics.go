package agenda

import (
	"time"

	"agendacal/internal/model"
)

// TextDirection is the reading direction exposed to assistive technology.
type TextDirection int

const (
	DirectionLTR TextDirection = iota
	DirectionRTL
)

// NodeHandle is an opaque, pooled identity for one semantics node.
// Assistive technology keys off handle identity, so handles are recycled
// rather than recreated to avoid spurious node churn across relayouts.
type NodeHandle struct {
	id int
}

// ID returns the stable numeric identity of the handle.
func (h *NodeHandle) ID() int { return h.id }

// SemanticsNode is one element of the derived accessibility tree: a
// bounding rectangle geometrically identical to the paint rectangle, a
// composed label, and a reading direction.
type SemanticsNode struct {
	Handle    *NodeHandle
	Rect      RoundedRect
	Label     string
	Direction TextDirection
}

// DescribeFunc composes the accessible label for one appointment on the
// selected date. It is supplied by the localization collaborator.
type DescribeFunc func(a model.Appointment, selectedDate time.Time) string

// Semantics owns the derived node list and the handle pool. Like the
// layout engine it is single-goroutine state.
type Semantics struct {
	nodes  []SemanticsNode
	pool   []*NodeHandle // FIFO of reusable handles
	nextID int
}

// NewSemantics returns an empty semantics owner.
func NewSemantics() *Semantics {
	return &Semantics{}
}

// Nodes returns the current node list in slot order.
func (s *Semantics) Nodes() []SemanticsNode {
	return s.nodes
}

// Rebuild regenerates the node list from the slot geometry. Handles from
// the previous generation are recycled first (FIFO), so node identity is
// stable under reordering as long as the node count does not shrink.
//
// When there are no slots, a single node covering the whole surface is
// produced with infoLabel (the "no events" / "no selected date" text).
func (s *Semantics) Rebuild(slots []*AppointmentView, selectedDate time.Time, cfg LayoutConfig, describe DescribeFunc, infoLabel string, dir TextDirection) []SemanticsNode {
	// Previous generation's handles become the refill pool, oldest first.
	for i := range s.nodes {
		s.pool = append(s.pool, s.nodes[i].Handle)
	}
	s.nodes = s.nodes[:0]

	bound := 0
	for _, slot := range slots {
		if slot.Appointment != nil {
			bound++
		}
	}

	if bound == 0 {
		s.nodes = append(s.nodes, SemanticsNode{
			Handle:    s.take(),
			Rect:      RoundedRect{Width: cfg.Width, Height: cfg.Height},
			Label:     infoLabel,
			Direction: dir,
		})
		return s.nodes
	}

	for _, slot := range slots {
		if slot.Appointment == nil || slot.Rect == nil {
			continue
		}
		s.nodes = append(s.nodes, SemanticsNode{
			Handle:    s.take(),
			Rect:      *slot.Rect,
			Label:     describe(*slot.Appointment, selectedDate),
			Direction: dir,
		})
	}
	return s.nodes
}

// take pops the oldest pooled handle, creating a fresh one only when the
// pool is empty.
func (s *Semantics) take() *NodeHandle {
	if len(s.pool) > 0 {
		h := s.pool[0]
		s.pool = s.pool[1:]
		return h
	}
	s.nextID++
	return &NodeHandle{id: s.nextID}
}

// Dispose drops all nodes and pooled handles. Called on teardown of the
// hosting view.
func (s *Semantics) Dispose() {
	s.nodes = nil
	s.pool = nil
}
