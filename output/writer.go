// Package output renders a count.Context as the fixed text table spec.md
// §6 defines: one line per gene, sorted by gene name, followed by the
// standard double-underscore-prefixed bookkeeping lines.
package output

import (
	"context"
	"io"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"

	"github.com/gridgene/squab/count"
)

// WriteToPath renders result to the file at path, creating or truncating it.
func WriteToPath(ctx context.Context, path string, result *count.Context) (err error) {
	dst, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "output: create", path)
	}
	defer file.CloseAndReport(ctx, dst, &err)

	return Write(dst.Writer(ctx), result)
}

// Write renders result to w as spec.md §6's fixed table: gene lines sorted
// ascending by name, each `<gene>\t<count>\n`, followed by the bookkeeping
// lines `__no_feature`, `__ambiguous`, `__too_low_aQual`, `__not_aligned`,
// `__alignment_not_unique` in that fixed order.
func Write(w io.Writer, result *count.Context) error {
	tsvw := tsv.NewWriter(w)

	names := make([]string, 0, len(result.Counts))
	for name := range result.Counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tsvw.WriteString(name)
		tsvw.WriteInt64(int64(result.Counts[name]))
		if err := tsvw.EndLine(); err != nil {
			return errors.E(err, "output: write gene line", name)
		}
	}

	for _, line := range []struct {
		label string
		n     int
	}{
		{"__no_feature", result.NoFeature},
		{"__ambiguous", result.Ambiguous},
		{"__too_low_aQual", result.LowQuality},
		{"__not_aligned", result.Unmapped},
		{"__alignment_not_unique", result.Nonunique},
	} {
		tsvw.WriteString(line.label)
		tsvw.WriteInt64(int64(line.n))
		if err := tsvw.EndLine(); err != nil {
			return errors.E(err, "output: write bookkeeping line", line.label)
		}
	}

	return tsvw.Flush()
}
