// Package bamsource opens a BAM file and exposes it as the record source
// and reference table the counting engine's external interfaces (spec.md
// §6) expect. Decoding the BGZF/BAM container itself is, per spec.md §1,
// deliberately out of scope for the core; this package is the thin
// collaborator that supplies it.
package bamsource

import (
	"context"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// Reader reads sam.Records from a BAM file in the order they occur,
// satisfying count.RecordSource. It is single-pass and not safe for
// concurrent use.
type Reader struct {
	ctx    context.Context
	infile file.File
	bam    *bam.Reader
}

// Open opens the BAM file at path and decodes its header. readConcurrency
// is forwarded to bam.NewReader's BGZF block-decompression concurrency; 0
// selects GOMAXPROCS.
func Open(ctx context.Context, path string, readConcurrency int) (*Reader, error) {
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "bamsource: open", path)
	}

	br, err := bam.NewReader(io.Reader(infile.Reader(ctx)), readConcurrency)
	if err != nil {
		_ = infile.Close(ctx)
		return nil, errors.E(err, "bamsource: decode BAM header", path)
	}

	return &Reader{ctx: ctx, infile: infile, bam: br}, nil
}

// Header returns the decoded SAM header, the source of spec.md §3's
// "Reference table".
func (r *Reader) Header() *sam.Header { return r.bam.Header() }

// Next returns the next record, or io.EOF once the file is exhausted. Any
// other error is a decode failure and is fatal, per spec.md §7's "Upstream
// I/O" category.
func (r *Reader) Next() (*sam.Record, error) {
	rec, err := r.bam.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.E(err, "bamsource: read record")
	}
	return rec, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.infile.Close(r.ctx)
}
