package count

import (
	"io"

	"github.com/biogo/store/interval"

	"github.com/biogo/hts/sam"

	"github.com/gridgene/squab/strand"
)

// StrandSpecification is the library-protocol configuration chosen once
// per run (spec.md §3).
type StrandSpecification int8

const (
	// StrandNone means strand is not considered at all.
	StrandNone StrandSpecification = iota
	// StrandForward means the read's orientation directly encodes the
	// transcript strand.
	StrandForward
	// StrandReverse means the read's orientation is inverted relative to
	// the transcript strand.
	StrandReverse
)

// CountSingleEndRecords runs the single-end counting entry point over
// every record in src, per spec.md §4.G.
func CountSingleEndRecords(src RecordSource, features Features, refs referenceTable, filter *Filter, spec StrandSpecification) (*Context, error) {
	ctx := NewContext()
	for {
		r, err := src.Next()
		if err == io.EOF {
			return ctx, nil
		}
		if err != nil {
			return nil, err
		}
		if err := countSingleEndRecord(ctx, features, refs, filter, spec, r); err != nil {
			return nil, err
		}
	}
}

func countSingleEndRecord(ctx *Context, features Features, refs referenceTable, filter *Filter, spec StrandSpecification, r *sam.Record) error {
	if res := filter.Record(r); res != Kept {
		ctx.addFilterResult(res)
		return nil
	}

	invert := spec == StrandReverse
	tree, err := resolveTree(ctx, features, refs, refID(r))
	if err != nil {
		return err
	}
	if tree == nil {
		return nil
	}

	genes := intersect(tree, NewCigarIntervals(r.Cigar, r.Pos+1, r.Flags, invert), spec)
	ctx.addIntersections(genes)
	return nil
}

// CountPairedEndRecords runs the paired-end counting entry point: it pairs
// up records via a PairBuffer and counts each completed pair. The returned
// PairBuffer's Singletons should be drained through
// CountPairedEndSingletons to account for every input record, per spec.md
// §9 "Singleton handling".
func CountPairedEndRecords(src RecordSource, features Features, refs referenceTable, filter *Filter, spec StrandSpecification) (*Context, *PairBuffer, error) {
	ctx := NewContext()
	pairs := NewPairBuffer(src, filter.PrimaryOnly())

	for {
		r1, r2, err := pairs.Next()
		if err == io.EOF {
			return ctx, pairs, nil
		}
		if err != nil {
			return nil, nil, err
		}

		if res := filter.Pair(r1, r2); res != Kept {
			ctx.addFilterResult(res)
			continue
		}

		tree1, err := resolveTree(ctx, features, refs, refID(r1))
		if err != nil {
			return nil, nil, err
		}
		if tree1 == nil {
			continue
		}
		genes := intersect(tree1, NewCigarIntervals(r1.Cigar, r1.Pos+1, r1.Flags, spec == StrandReverse), spec)

		tree2, err := resolveTree(ctx, features, refs, refID(r2))
		if err != nil {
			return nil, nil, err
		}
		if tree2 == nil {
			continue
		}
		for gene := range intersect(tree2, NewCigarIntervals(r2.Cigar, r2.Pos+1, r2.Flags, spec != StrandReverse), spec) {
			genes[gene] = struct{}{}
		}

		ctx.addIntersections(genes)
	}
}

// CountPairedEndSingletons processes the records drained from a
// PairBuffer's Singletons after a paired-end run, using the per-mate
// inversion rule of spec.md §4.G's "Paired-end singleton fallback". It
// accumulates into ctx so the run's Context reflects both paired and
// singleton records.
func CountPairedEndSingletons(ctx *Context, singles []*sam.Record, features Features, refs referenceTable, filter *Filter, spec StrandSpecification) error {
	for _, r := range singles {
		if res := filter.Record(r); res != Kept {
			ctx.addFilterResult(res)
			continue
		}

		pos, err := PairPositionOf(r.Flags)
		if err != nil {
			return err
		}
		invert := (pos == Second) != (spec == StrandReverse)

		tree, err := resolveTree(ctx, features, refs, refID(r))
		if err != nil {
			return err
		}
		if tree == nil {
			continue
		}

		genes := intersect(tree, NewCigarIntervals(r.Cigar, r.Pos+1, r.Flags, invert), spec)
		ctx.addIntersections(genes)
	}
	return nil
}

// refID returns r's reference-sequence id (-1 if unmapped).
func refID(r *sam.Record) int { return r.Ref.ID() }

// intersect applies the strand-aware intersection rule of spec.md §4.G
// across every interval the CIGAR projects, returning the union of
// matching gene names.
func intersect(tree *interval.IntTree, intervals *CigarIntervals, spec StrandSpecification) map[string]struct{} {
	genes := make(map[string]struct{})
	for {
		iv, ok := intervals.Next()
		if !ok {
			break
		}
		overlapping(tree, iv.Start, iv.End, func(e *featureEntry) {
			switch spec {
			case StrandNone:
				genes[e.GeneName] = struct{}{}
			default:
				if (e.Strand == strand.Reverse && iv.EffectiveRev) || (e.Strand == strand.Forward && !iv.EffectiveRev) {
					genes[e.GeneName] = struct{}{}
				}
			}
		})
	}
	return genes
}
