package editor

import (
	"grouporder/apperr"
)

type OpKind string

const (
	OpIncrement OpKind = "increment"
	OpDecrement OpKind = "decrement"
	OpSetOption OpKind = "set-option"
	OpDuplicate OpKind = "duplicate"
	OpRemove    OpKind = "remove"
)

// Op is one user edit, in the form it arrives from a request.
type Op struct {
	Kind   OpKind `json:"kind"`
	Index  int    `json:"index"`
	Option string `json:"option,omitempty"`
}

// Apply validates op against the sequence and runs it. Unlike the direct
// methods it never panics on a bad index.
func (s Sequence) Apply(op Op) (Sequence, error) {
	if op.Index < 0 || op.Index >= len(s.entries) {
		return s, apperr.Invalidf("index", "entry %d does not exist", op.Index)
	}
	switch op.Kind {
	case OpIncrement:
		return s.Increment(op.Index), nil
	case OpDecrement:
		return s.Decrement(op.Index), nil
	case OpSetOption:
		return s.SetOption(op.Index, op.Option)
	case OpDuplicate:
		return s.Duplicate(op.Index), nil
	case OpRemove:
		return s.Remove(op.Index), nil
	default:
		return s, apperr.Invalidf("kind", "unknown operation %q", op.Kind)
	}
}

// Replay applies ops in order and stops at the first failure.
func Replay(s Sequence, ops []Op) (Sequence, error) {
	for _, op := range ops {
		next, err := s.Apply(op)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}
