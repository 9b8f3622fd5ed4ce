package pattern

// Stitch declares that two interfaces are sewn together. The pair is
// unordered; which edge meets which is resolved during assembly.
type Stitch struct {
	A, B *Interface
}

// Stitches is a collection of declared seams. Registration is lazy:
// compatibility of the two sides is only checked when assembling.
type Stitches struct {
	list []Stitch
}

// NewStitches creates a registry from interface pairs.
func NewStitches(pairs ...[2]*Interface) *Stitches {
	s := &Stitches{}
	for _, p := range pairs {
		s.Append(p[0], p[1])
	}
	return s
}

// Append registers a seam between a and b.
func (s *Stitches) Append(a, b *Interface) *Stitches {
	s.list = append(s.list, Stitch{A: a, B: b})
	return s
}

// Merge appends all stitches of other.
func (s *Stitches) Merge(other *Stitches) *Stitches {
	if other != nil {
		s.list = append(s.list, other.list...)
	}
	return s
}

// Len returns the number of stitches.
func (s *Stitches) Len() int {
	if s == nil {
		return 0
	}
	return len(s.list)
}

// All returns the registered stitches in registration order.
func (s *Stitches) All() []Stitch {
	if s == nil {
		return nil
	}
	return append([]Stitch(nil), s.list...)
}
