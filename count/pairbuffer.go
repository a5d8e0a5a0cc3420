package count

import (
	"io"

	"github.com/grailbio/base/log"

	"github.com/biogo/hts/sam"
)

// pairKey is the 7-field key spec.md §4.D assigns to each half of a pair,
// chosen so that key(record) == mateKey(mate). Reference ids and positions
// keep sam's own -1-means-absent convention, so "nullable" needs no
// separate sentinel type.
type pairKey struct {
	name      string
	pos       PairPosition
	refID     int
	recPos    int
	mateRefID int
	matePos   int
	tlen      int
}

func recordKey(r *sam.Record) (pairKey, error) {
	pos, err := PairPositionOf(r.Flags)
	if err != nil {
		return pairKey{}, err
	}
	return pairKey{
		name:      r.Name,
		pos:       pos,
		refID:     r.Ref.ID(),
		recPos:    r.Pos,
		mateRefID: r.MateRef.ID(),
		matePos:   r.MatePos,
		tlen:      r.TempLen,
	}, nil
}

func mateKeyOf(r *sam.Record) (pairKey, error) {
	pos, err := PairPositionOf(r.Flags)
	if err != nil {
		return pairKey{}, err
	}
	return pairKey{
		name:      r.Name,
		pos:       pos.Mate(),
		refID:     r.MateRef.ID(),
		recPos:    r.MatePos,
		mateRefID: r.Ref.ID(),
		matePos:   r.Pos,
		tlen:      -r.TempLen,
	}, nil
}

// PairBuffer turns a name-unordered RecordSource into a stream of
// (mate1, mate2) pairs, buffering unmatched halves in a map keyed by
// pairKey until their mate arrives. Residual singletons are available via
// Singletons after the source is exhausted.
//
// Duplicate buffer keys are resolved by overwrite: if a second record with
// the exact same key arrives before its mate does, it replaces the first
// in the buffer via a plain map insert, and only the survivor is ever
// paired or drained.
type PairBuffer struct {
	src         RecordSource
	primaryOnly bool
	buf         map[pairKey]*sam.Record
}

// NewPairBuffer returns a PairBuffer reading from src. primaryOnly should
// be set when both secondary and supplementary records are excluded by the
// filter configuration, so that those records never enter the buffer (and
// are never reported as a residual singleton) at all.
func NewPairBuffer(src RecordSource, primaryOnly bool) *PairBuffer {
	return &PairBuffer{src: src, primaryOnly: primaryOnly, buf: make(map[pairKey]*sam.Record)}
}

// Next returns the next completed pair, ordered (mate1, mate2). It returns
// io.EOF once the source is exhausted; any unmatched records remain in the
// buffer and are available from Singletons.
func (p *PairBuffer) Next() (*sam.Record, *sam.Record, error) {
	for {
		r, err := p.src.Next()
		if err == io.EOF {
			if len(p.buf) != 0 {
				log.Printf("count: %d records are singletons", len(p.buf))
			}
			return nil, nil, io.EOF
		}
		if err != nil {
			return nil, nil, err
		}

		if p.primaryOnly && r.Flags&(sam.Secondary|sam.Supplementary) != 0 {
			continue
		}

		mk, err := mateKeyOf(r)
		if err != nil {
			return nil, nil, err
		}

		if stored, ok := p.buf[mk]; ok {
			delete(p.buf, mk)
			storedPos, err := PairPositionOf(stored.Flags)
			if err != nil {
				return nil, nil, err
			}
			if storedPos == First {
				return stored, r, nil
			}
			return r, stored, nil
		}

		k, err := recordKey(r)
		if err != nil {
			return nil, nil, err
		}
		p.buf[k] = r
	}
}

// Singletons drains the buffer of records whose mate never arrived. It
// should only be called after Next has returned io.EOF.
func (p *PairBuffer) Singletons() []*sam.Record {
	out := make([]*sam.Record, 0, len(p.buf))
	for _, r := range p.buf {
		out = append(out, r)
	}
	p.buf = make(map[pairKey]*sam.Record)
	return out
}
