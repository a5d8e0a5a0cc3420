package count

import "github.com/biogo/hts/sam"

var nhTag = sam.NewTag("NH")

// FilterResult names the bookkeeping counter a dropped record/pair was
// attributed to.
type FilterResult int8

const (
	// Kept means the record was not dropped.
	Kept FilterResult = iota
	LowQuality
	Unmapped
	Nonunique
	Duplicate
	Secondary
	Supplementary
)

// Filter holds the configuration used to decide whether a record is
// counted at all, per spec.md §4.E.
type Filter struct {
	MinMappingQuality        byte
	WithSecondaryRecords     bool
	WithSupplementaryRecords bool
	WithNonuniqueRecords     bool
}

// PrimaryOnly reports whether both secondary and supplementary records are
// excluded, the condition under which the pair buffer may skip them before
// ever attempting to pair them (spec.md §4.D step 2).
func (f *Filter) PrimaryOnly() bool {
	return !f.WithSecondaryRecords && !f.WithSupplementaryRecords
}

// isNonunique reports whether r is a multi-mapper: its NH aux tag (if
// present) is greater than 1. A record with no NH tag is treated as unique;
// htseq-count-style "declared multimapper without NH" flags aren't produced
// by any aligner this tool has been run against, so there's nothing else to
// key that case off.
func isNonunique(r *sam.Record) bool {
	aux, ok := r.Tag(nhTag[:])
	if !ok {
		return false
	}
	switch v := aux.Value().(type) {
	case int8:
		return v > 1
	case uint8:
		return v > 1
	case int16:
		return v > 1
	case uint16:
		return v > 1
	case int32:
		return v > 1
	case uint32:
		return v > 1
	case int:
		return v > 1
	default:
		return false
	}
}

// Record applies the single-record filter order of spec.md §4.E: the first
// matching condition wins.
func (f *Filter) Record(r *sam.Record) FilterResult {
	switch {
	case r.Flags&sam.Unmapped != 0:
		return Unmapped
	case r.Flags&sam.Secondary != 0 && !f.WithSecondaryRecords:
		return Secondary
	case r.Flags&sam.Supplementary != 0 && !f.WithSupplementaryRecords:
		return Supplementary
	case r.MapQ < f.MinMappingQuality:
		return LowQuality
	case r.Flags&sam.Duplicate != 0:
		// "configured" here means marked upstream (e.g. by a dedup tool
		// setting the flag), not a toggle owned by this filter.
		return Duplicate
	case !f.WithNonuniqueRecords && isNonunique(r):
		return Nonunique
	default:
		return Kept
	}
}

// Pair applies the single-record filter to both mates of a pair. If either
// mate would be dropped, the pair is dropped under the reason of whichever
// mate failed first (r1 checked before r2); if both mates fail for the same
// reason the counter is still incremented exactly once, by the caller.
func (f *Filter) Pair(r1, r2 *sam.Record) FilterResult {
	if res := f.Record(r1); res != Kept {
		return res
	}
	return f.Record(r2)
}
