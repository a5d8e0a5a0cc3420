package count

import (
	"github.com/biogo/store/interval"
	"github.com/grailbio/base/errors"

	"github.com/biogo/hts/sam"

	"github.com/gridgene/squab/strand"
)

// Features maps a reference sequence name to the interval tree of genes
// annotated on it. It is built externally (see package annotation) and is
// read-only during counting.
type Features map[string]*interval.IntTree

// featureEntry is a single annotated interval stored in a Features tree: a
// gene name and strand over the same 1-based half-open [Start, End) range
// the CIGAR projector's Interval uses, so the two compare directly.
type featureEntry struct {
	id       uintptr
	r        interval.IntRange
	GeneName string
	Strand   strand.Strand
}

func (e *featureEntry) ID() uintptr              { return e.id }
func (e *featureEntry) Range() interval.IntRange { return e.r }
func (e *featureEntry) Overlap(b interval.IntRange) bool {
	return e.r.Start < b.End && e.r.End > b.Start
}

// NewFeatureEntry returns a tree value for a gene spanning the 1-based
// half-open interval [start, end) on some reference (the same frame the
// CIGAR projector's Interval uses), carrying id as the
// tree's required unique identifier (callers typically assign these
// sequentially while loading an annotation file).
func NewFeatureEntry(id uintptr, start, end int, geneName string, st strand.Strand) interval.IntInterface {
	return &featureEntry{id: id, r: interval.IntRange{Start: start, End: end}, GeneName: geneName, Strand: st}
}

// query is the Overlapper passed to IntTree.DoMatching; it represents the
// half-open [Start, End) interval being queried, independent of any stored
// feature's identity.
type query interval.IntRange

func (q query) Overlap(b interval.IntRange) bool {
	return interval.IntRange(q).Start < b.End && interval.IntRange(q).End > b.Start
}

// overlapping invokes fn for every feature entry in t whose interval
// overlaps the half-open 1-based range [start, end).
func overlapping(t *interval.IntTree, start, end int, fn func(*featureEntry)) {
	t.DoMatching(func(iv interval.IntInterface) (done bool) {
		fn(iv.(*featureEntry))
		return false
	}, query{Start: start, End: end})
}

// referenceTable is the ordered (name, length) sequence from an alignment
// header, indexed by the numeric reference id stored in each record
// (spec.md §3 "Reference table").
type referenceTable interface {
	Len() int
	NameAt(id int) string
}

// headerReferenceTable adapts a *sam.Header to referenceTable.
type headerReferenceTable struct {
	refs []*sam.Reference
}

// NewReferenceTable wraps an alignment header's reference list.
func NewReferenceTable(h *sam.Header) referenceTable {
	return headerReferenceTable{refs: h.Refs()}
}

func (t headerReferenceTable) Len() int { return len(t.refs) }
func (t headerReferenceTable) NameAt(id int) string { return t.refs[id].Name() }

// resolveReference validates refID against the reference table and returns
// its name. Negative or out-of-range ids are InvalidData errors per
// spec.md §7.
func resolveReference(refs referenceTable, refID int) (string, error) {
	if refID < 0 {
		return "", errors.E("count: expected reference id >= 0, got", refID)
	}
	if refID >= refs.Len() {
		return "", errors.E("count: expected reference id <", refs.Len(), "got", refID)
	}
	return refs.NameAt(refID), nil
}

// resolveTree looks up the interval tree for refID (spec.md §4.F). If the
// reference has no entry in features, it increments ctx.NoFeature and
// returns (nil, nil); a fatal lookup error (bad refID) is returned as-is
// and ctx is left unmodified.
func resolveTree(ctx *Context, features Features, refs referenceTable, refID int) (*interval.IntTree, error) {
	name, err := resolveReference(refs, refID)
	if err != nil {
		return nil, err
	}
	tree, ok := features[name]
	if !ok {
		ctx.NoFeature++
		return nil, nil
	}
	return tree, nil
}
