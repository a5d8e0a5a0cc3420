package count

import "github.com/biogo/hts/sam"

// Interval is a half-open [Start, End) reference interval using 1-based
// coordinates, paired with the effective orientation of the alignment run
// that produced it.
type Interval struct {
	Start, End   int
	EffectiveRev bool
}

// CigarIntervals lazily projects a CIGAR into a sequence of reference
// Intervals. Consecutive match/mismatch operations are merged into a single
// interval; a reference skip (CigarSkipped) or deletion (CigarDeletion)
// closes the current run and advances the cursor without emitting its own
// interval. Insertions, soft/hard clips, and pads neither extend nor close
// a run.
//
// A CigarIntervals is single-use: call Next until it returns false.
type CigarIntervals struct {
	cigar   sam.Cigar
	idx     int
	cursor  int
	isRev   bool
	invert  bool
	runOpen bool
	runFrom int
}

// NewCigarIntervals returns a projector over cigar, starting at the 1-based
// reference position start. flags supplies the record's reverse-strand bit;
// invert is XORed with it to produce each emitted interval's
// EffectiveRev (see count's strand-specification handling in engine.go).
func NewCigarIntervals(cigar sam.Cigar, start int, flags sam.Flags, invert bool) *CigarIntervals {
	return &CigarIntervals{
		cigar:  cigar,
		cursor: start,
		isRev:  flags&sam.Reverse != 0,
		invert: invert,
	}
}

// Next advances the projector, returning the next interval and true, or a
// zero Interval and false once the CIGAR is exhausted.
func (c *CigarIntervals) Next() (Interval, bool) {
	for c.idx < len(c.cigar) {
		op := c.cigar[c.idx]
		c.idx++

		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if !c.runOpen {
				c.runFrom = c.cursor
				c.runOpen = true
			}
			c.cursor += op.Len()

		case sam.CigarDeletion, sam.CigarSkipped:
			if c.runOpen {
				iv := c.interval(c.runFrom, c.cursor)
				c.runOpen = false
				c.cursor += op.Len()
				return iv, true
			}
			c.cursor += op.Len()

		default:
			// Insertion, soft clip, hard clip, pad: do not consume reference.
		}
	}
	if c.runOpen {
		iv := c.interval(c.runFrom, c.cursor)
		c.runOpen = false
		return iv, true
	}
	return Interval{}, false
}

func (c *CigarIntervals) interval(from, to int) Interval {
	return Interval{Start: from, End: to, EffectiveRev: c.isRev != c.invert}
}
