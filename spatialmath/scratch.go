package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Scratch is a stack of reusable vectors for calculations that need temporary point buffers, such as
// fitting volumes to triangle ranges. Vectors handed out are valid until the mark taken before them is
// released. A Scratch must not be shared between goroutines; a nil *Scratch is valid and allocates on
// every request.
//
//	mark := scratch.Mark()
//	defer scratch.Release(mark)
//	pts := scratch.Vectors(8)
type Scratch struct {
	vecs []r3.Vector
	top  int
}

// ScratchMark records the height of a Scratch stack.
type ScratchMark int

// NewScratch returns an empty arena.
func NewScratch() *Scratch {
	return &Scratch{}
}

// Mark returns the current stack height, to be passed to Release.
func (s *Scratch) Mark() ScratchMark {
	if s == nil {
		return 0
	}
	return ScratchMark(s.top)
}

// Release returns every vector handed out since mark to the arena.
func (s *Scratch) Release(mark ScratchMark) {
	if s == nil {
		return
	}
	if int(mark) < s.top {
		s.top = int(mark)
	}
}

// Vectors returns n zeroed vectors.
func (s *Scratch) Vectors(n int) []r3.Vector {
	if s == nil {
		return make([]r3.Vector, n)
	}
	if s.top+n > len(s.vecs) {
		// Slices already handed out keep pointing at the old backing array, so growing never aliases them.
		grown := make([]r3.Vector, 2*(s.top+n))
		copy(grown, s.vecs[:s.top])
		s.vecs = grown
	}
	out := s.vecs[s.top : s.top+n : s.top+n]
	s.top += n
	for i := range out {
		out[i] = r3.Vector{}
	}
	return out
}

// InUse returns how many vectors are currently handed out.
func (s *Scratch) InUse() int {
	if s == nil {
		return 0
	}
	return s.top
}
