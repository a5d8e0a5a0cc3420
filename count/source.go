package count

import "github.com/biogo/hts/sam"

// RecordSource is a finite, non-restartable sequence of alignment records
// (spec.md §6 "Record source contract"). Next returns io.EOF once the
// source is exhausted; any other error is fatal and propagates to the
// caller of the counting engine.
type RecordSource interface {
	Next() (*sam.Record, error)
}
