package bamsource

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/vcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestBAM(t *testing.T, path string) *sam.Reference {
	t.Helper()

	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)

	cigar, err := sam.ParseCigar([]byte("4M"))
	require.NoError(t, err)
	rec, err := sam.NewRecord("read1", ref, nil, 0, -1, 0, 30, cigar, []byte("ACGT"), nil, nil)
	require.NoError(t, err)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	bw, err := bam.NewWriter(f, header, 0)
	require.NoError(t, err)
	require.NoError(t, bw.Write(rec))
	require.NoError(t, bw.Close())

	return ref
}

func TestReaderReadsHeaderAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bam")
	writeTestBAM(t, path)

	ctx := vcontext.Background()
	r, err := Open(ctx, path, 0)
	require.NoError(t, err)
	defer r.Close()

	refs := r.Header().Refs()
	require.Len(t, refs, 1)
	assert.Equal(t, "chr1", refs[0].Name())
	assert.Equal(t, 1000, refs[0].Len())

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "read1", rec.Name)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenMissingFileFails(t *testing.T) {
	ctx := vcontext.Background()
	_, err := Open(ctx, filepath.Join(t.TempDir(), "missing.bam"), 0)
	assert.Error(t, err)
}
