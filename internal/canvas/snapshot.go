package canvas

import "bytes"

// Snapshot is an immutable copy of the canvas pixels at one instant.
// The zero value is an empty snapshot.
type Snapshot struct {
	rows int
	cols int
	pix  []byte
}

// Size returns the snapshot dimensions as width, height.
func (s Snapshot) Size() (int, int) {
	return s.cols, s.rows
}

// Empty reports whether the snapshot holds no pixels.
func (s Snapshot) Empty() bool {
	return len(s.pix) == 0
}

// Bytes returns a copy of the raw BGR pixels.
func (s Snapshot) Bytes() []byte {
	out := make([]byte, len(s.pix))
	copy(out, s.pix)
	return out
}

// Equal reports whether two snapshots hold identical pixels.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.rows == o.rows && s.cols == o.cols && bytes.Equal(s.pix, o.pix)
}
