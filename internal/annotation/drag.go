package annotation

import "image"

// DragTarget identifies what a drag gesture grabbed.
type DragTarget int

const (
	DragNone DragTarget = iota
	DragObject
	DragCaret
)

// caretGrabMin is the minimum size of the caret's grab box, so that an empty
// buffer can still be picked up.
const caretGrabMin = 30

type dragState struct {
	target DragTarget
	index  int
	offset image.Point
}

// BeginDrag grabs whatever lies under p. A committed object wins over the
// caret. On a hit the object becomes the only selected one; on a miss every
// selection is cleared.
func (s *Store) BeginDrag(p image.Point) DragTarget {
	if i, ok := s.HitTest(p); ok {
		s.Select(i)
		obj := s.ring[s.slot(i)]
		s.drag = dragState{target: DragObject, index: i, offset: p.Sub(obj.Position)}
		return DragObject
	}

	s.ClearSelection()
	if s.caret.active && containsInclusive(s.caretGrabBox(), p) {
		s.drag = dragState{target: DragCaret, offset: p.Sub(s.caret.pos)}
		return DragCaret
	}

	s.drag = dragState{}
	return DragNone
}

// ContinueDrag moves the grabbed object or caret so the grab offset is kept.
func (s *Store) ContinueDrag(p image.Point) bool {
	switch s.drag.target {
	case DragObject:
		if s.drag.index < 0 || s.drag.index >= s.n {
			s.drag = dragState{}
			return false
		}
		s.ring[s.slot(s.drag.index)].Position = p.Sub(s.drag.offset)
		return true
	case DragCaret:
		if !s.caret.active {
			s.drag = dragState{}
			return false
		}
		s.caret.pos = p.Sub(s.drag.offset)
		return true
	default:
		return false
	}
}

// EndDrag releases the grab. Selection is kept.
func (s *Store) EndDrag() {
	s.drag = dragState{}
}

// Dragging returns the current drag target.
func (s *Store) Dragging() DragTarget {
	return s.drag.target
}

func (s *Store) caretGrabBox() image.Rectangle {
	sz := s.measure(s.caret.text, s.style.Scale, s.style.Thickness)
	w, h := max(sz.X, caretGrabMin), max(sz.Y, caretGrabMin)
	return image.Rect(s.caret.pos.X, s.caret.pos.Y-h, s.caret.pos.X+w, s.caret.pos.Y)
}
