package annotation

import "image"

// DefaultCapacity is the number of live text objects kept before the oldest is evicted.
const DefaultCapacity = 20

// Store is the ordered collection of committed text objects. Insertion order
// is z-order: later objects are drawn on top and win hit-tests.
//
// Objects live in a fixed ring. Add is O(1) and evicts the oldest object when
// the ring is full; DeleteAt is O(n) because later objects shift down one slot
// to keep indices dense.
//
// A Store is not safe for concurrent use.
type Store struct {
	ring    []TextObject
	head    int
	n       int
	style   Style
	measure Measurer
	drag    dragState
	caret   caretState
}

// Option configures a Store.
type Option func(*Store)

// WithStyle sets the default style for committed text.
func WithStyle(st Style) Option {
	return func(s *Store) { s.style = st }
}

// WithMeasurer replaces the text metrics used for hit-testing.
func WithMeasurer(m Measurer) Option {
	return func(s *Store) {
		if m != nil {
			s.measure = m
		}
	}
}

// WithBlinkInterval sets how often the caret toggles visibility.
func WithBlinkInterval(seconds float64) Option {
	return func(s *Store) {
		if seconds > 0 {
			s.caret.blinkInterval = seconds
		}
	}
}

// WithCaretHome sets where a new typing session places the caret.
func WithCaretHome(p image.Point) Option {
	return func(s *Store) { s.caret.home = p }
}

// NewStore creates a store holding at most capacity objects. Capacity below 1 uses DefaultCapacity.
func NewStore(capacity int, opts ...Option) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	s := &Store{
		ring:    make([]TextObject, capacity),
		style:   DefaultStyle(),
		measure: MeasureHershey,
		caret:   newCaret(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of live objects.
func (s *Store) Len() int { return s.n }

// Capacity returns the maximum number of live objects.
func (s *Store) Capacity() int { return len(s.ring) }

// Style returns the default style for committed text.
func (s *Store) Style() Style { return s.style }

// Measure returns the metrics function used for bounds.
func (s *Store) Measure() Measurer { return s.measure }

func (s *Store) slot(i int) int {
	return (s.head + i) % len(s.ring)
}

// At returns the object at z-index i.
func (s *Store) At(i int) (TextObject, bool) {
	if i < 0 || i >= s.n {
		return TextObject{}, false
	}
	return s.ring[s.slot(i)], true
}

// Objects returns the live objects bottom to top. The slice is a copy.
func (s *Store) Objects() []TextObject {
	out := make([]TextObject, s.n)
	for i := range out {
		out[i] = s.ring[s.slot(i)]
	}
	return out
}

// Replace swaps the whole collection, as when restoring history. Objects
// beyond capacity are dropped from the front. Any drag in progress ends.
func (s *Store) Replace(objs []TextObject) {
	if over := len(objs) - len(s.ring); over > 0 {
		objs = objs[over:]
	}
	clear(s.ring)
	s.head = 0
	s.n = copy(s.ring, objs)
	s.drag = dragState{}
}

// Add appends obj on top. It reports whether the oldest object was evicted to make room.
func (s *Store) Add(obj TextObject) bool {
	evicted := false
	if s.n == len(s.ring) {
		s.ring[s.head] = TextObject{}
		s.head = (s.head + 1) % len(s.ring)
		s.n--
		evicted = true
		s.shiftDrag(0)
	}
	s.ring[s.slot(s.n)] = obj
	s.n++
	return evicted
}

// HitTest returns the topmost object whose box contains p. It does not change selection.
func (s *Store) HitTest(p image.Point) (int, bool) {
	for i := s.n - 1; i >= 0; i-- {
		if s.ring[s.slot(i)].Contains(p, s.measure) {
			return i, true
		}
	}
	return -1, false
}

// Select marks object i as the single selected object.
func (s *Store) Select(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	for j := 0; j < s.n; j++ {
		s.ring[s.slot(j)].Selected = j == i
	}
	return true
}

// ClearSelection deselects every object.
func (s *Store) ClearSelection() {
	for j := 0; j < s.n; j++ {
		s.ring[s.slot(j)].Selected = false
	}
}

// Selected returns the index of the selected object.
func (s *Store) Selected() (int, bool) {
	for j := 0; j < s.n; j++ {
		if s.ring[s.slot(j)].Selected {
			return j, true
		}
	}
	return -1, false
}

// DeleteAt removes object i. Out-of-range indices are a no-op.
func (s *Store) DeleteAt(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	for j := i; j < s.n-1; j++ {
		s.ring[s.slot(j)] = s.ring[s.slot(j+1)]
	}
	s.ring[s.slot(s.n-1)] = TextObject{}
	s.n--
	s.shiftDrag(i)
	return true
}

// DeleteSelected removes the selected object, if any.
func (s *Store) DeleteSelected() bool {
	i, ok := s.Selected()
	if !ok {
		return false
	}
	return s.DeleteAt(i)
}

// shiftDrag fixes the drag target after object i was removed.
func (s *Store) shiftDrag(i int) {
	if s.drag.target != DragObject {
		return
	}
	switch {
	case s.drag.index == i:
		s.drag = dragState{}
	case s.drag.index > i:
		s.drag.index--
	}
}
