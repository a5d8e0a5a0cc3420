package count

import (
	"github.com/grailbio/base/errors"

	"github.com/biogo/hts/sam"
)

// PairPosition identifies which mate of a pair a record is.
type PairPosition int8

const (
	// First is mate 1 of a pair.
	First PairPosition = iota
	// Second is mate 2 of a pair.
	Second
)

// Mate returns the opposite pair position. Mate is an involution:
// p.Mate().Mate() == p.
func (p PairPosition) Mate() PairPosition {
	if p == First {
		return Second
	}
	return First
}

func (p PairPosition) String() string {
	if p == First {
		return "first"
	}
	return "second"
}

// errNotPaired is returned by PairPositionOf when a record's FLAG field has
// neither (or both) of the read-1/read-2 bits set.
var errNotPaired = errors.New("record is neither read 1 nor 2")

// PairPositionOf classifies a record's flags as First or Second. It fails
// unless exactly one of sam.Read1/sam.Read2 is set.
func PairPositionOf(flags sam.Flags) (PairPosition, error) {
	r1 := flags&sam.Read1 != 0
	r2 := flags&sam.Read2 != 0
	switch {
	case r1 && !r2:
		return First, nil
	case r2 && !r1:
		return Second, nil
	default:
		return First, errNotPaired
	}
}
