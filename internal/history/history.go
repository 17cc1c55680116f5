// Package history keeps bounded linear undo/redo stacks over canvas and text state.
package history

import (
	"github.com/ayusman/beyondbrush/internal/annotation"
	"github.com/ayusman/beyondbrush/internal/canvas"
)

// DefaultCapacity is the number of entries each stack retains.
const DefaultCapacity = 20

// Entry is the combined canvas and text state captured at one instant.
// Both halves are always taken together.
type Entry struct {
	Canvas canvas.Snapshot
	Texts  []annotation.TextObject
}

// NewEntry pairs a canvas snapshot with a private copy of the text objects.
func NewEntry(snap canvas.Snapshot, texts []annotation.TextObject) Entry {
	cp := make([]annotation.TextObject, len(texts))
	copy(cp, texts)
	return Entry{Canvas: snap, Texts: cp}
}

// stack is a bounded LIFO that drops its oldest element when full.
type stack struct {
	items    []Entry
	capacity int
}

func (s *stack) push(e Entry) {
	if len(s.items) == s.capacity {
		copy(s.items, s.items[1:])
		s.items = s.items[:len(s.items)-1]
	}
	s.items = append(s.items, e)
}

func (s *stack) pop() (Entry, bool) {
	if len(s.items) == 0 {
		return Entry{}, false
	}
	top := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = Entry{}
	s.items = s.items[:len(s.items)-1]
	return top, true
}

func (s *stack) clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Manager holds the undo and redo stacks. It is not safe for concurrent use.
type Manager struct {
	undo stack
	redo stack
}

// NewManager creates a manager whose stacks each hold at most capacity entries.
// Capacity below 1 uses DefaultCapacity.
func NewManager(capacity int) *Manager {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Manager{
		undo: stack{items: make([]Entry, 0, capacity), capacity: capacity},
		redo: stack{items: make([]Entry, 0, capacity), capacity: capacity},
	}
}

// Push records the state before a committing action and invalidates the redo chain.
func (m *Manager) Push(e Entry) {
	m.undo.push(e)
	m.redo.clear()
}

// Undo pops the most recent entry. current is the live state and moves to
// the redo stack. It returns false, leaving both stacks alone, when there is nothing to undo.
func (m *Manager) Undo(current Entry) (Entry, bool) {
	e, ok := m.undo.pop()
	if !ok {
		return Entry{}, false
	}
	m.redo.push(current)
	return e, true
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(current Entry) (Entry, bool) {
	e, ok := m.redo.pop()
	if !ok {
		return Entry{}, false
	}
	m.undo.push(current)
	return e, true
}

// UndoLen returns the number of undoable entries.
func (m *Manager) UndoLen() int { return len(m.undo.items) }

// RedoLen returns the number of redoable entries.
func (m *Manager) RedoLen() int { return len(m.redo.items) }

// Capacity returns the per-stack bound.
func (m *Manager) Capacity() int { return m.undo.capacity }

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.undo.clear()
	m.redo.clear()
}
