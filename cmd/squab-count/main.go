/*
squab-count assigns aligned reads to annotated genes and reports a
per-gene count table. It reads a BAM file and a GTF/GFF3 annotation file,
counts reads (or read pairs) against each annotated gene's exons, and
writes a text table of gene counts plus bookkeeping totals.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/gridgene/squab/annotation"
	"github.com/gridgene/squab/bamsource"
	"github.com/gridgene/squab/count"
	"github.com/gridgene/squab/output"
)

var (
	strandSpec      = flag.String("strand", "none", "Library strandedness: 'none', 'forward', or 'reverse'")
	minMapQ         = flag.Int("min-mapq", 10, "Minimum MAPQ; records below this are dropped as low quality")
	paired          = flag.Bool("paired", false, "Input is paired-end; pair records before counting")
	withSecondary   = flag.Bool("with-secondary", false, "Count secondary alignments")
	withSupp        = flag.Bool("with-supplementary", false, "Count supplementary alignments")
	withNonunique   = flag.Bool("with-nonunique", false, "Count multi-mapping (NH>1) records")
	featureType     = flag.String("feature-type", annotation.DefaultOptions.FeatureType, "GTF/GFF3 feature type (column 3) to count, e.g. 'exon'")
	geneIDAttribute = flag.String("gene-id-attribute", annotation.DefaultOptions.GeneIDAttribute, "GTF/GFF3 attribute carrying the gene name")
	out             = flag.String("out", "", "Output path for the count table; default stdout")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] bampath gff-path\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func parseStrandSpecification(s string) (count.StrandSpecification, error) {
	switch s {
	case "none":
		return count.StrandNone, nil
	case "forward":
		return count.StrandForward, nil
	case "reverse":
		return count.StrandReverse, nil
	default:
		return count.StrandNone, fmt.Errorf("squab-count: invalid strand specification %q", s)
	}
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("exactly two positional arguments required: bampath gff-path")
	}
	bamPath := flag.Arg(0)
	gffPath := flag.Arg(1)

	spec, err := parseStrandSpecification(*strandSpec)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := vcontext.Background()

	features, err := annotation.Load(gffPath, annotation.Options{
		FeatureType:     *featureType,
		GeneIDAttribute: *geneIDAttribute,
	})
	if err != nil {
		log.Fatalf("squab-count: loading annotation: %v", err)
	}

	src, err := bamsource.Open(ctx, bamPath, 0)
	if err != nil {
		log.Fatalf("squab-count: opening BAM: %v", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Error.Printf("squab-count: closing BAM: %v", cerr)
		}
	}()

	refs := count.NewReferenceTable(src.Header())
	filter := &count.Filter{
		MinMappingQuality:        byte(*minMapQ),
		WithSecondaryRecords:     *withSecondary,
		WithSupplementaryRecords: *withSupp,
		WithNonuniqueRecords:     *withNonunique,
	}

	var result *count.Context
	if *paired {
		ctxResult, pairs, err := count.CountPairedEndRecords(src, features, refs, filter, spec)
		if err != nil {
			log.Fatalf("squab-count: counting pairs: %v", err)
		}
		if err := count.CountPairedEndSingletons(ctxResult, pairs.Singletons(), features, refs, filter, spec); err != nil {
			log.Fatalf("squab-count: counting singletons: %v", err)
		}
		result = ctxResult
	} else {
		ctxResult, err := count.CountSingleEndRecords(src, features, refs, filter, spec)
		if err != nil {
			log.Fatalf("squab-count: counting records: %v", err)
		}
		result = ctxResult
	}

	if *out == "" {
		if err := output.Write(os.Stdout, result); err != nil {
			log.Fatalf("squab-count: writing output: %v", err)
		}
		return
	}
	if err := output.WriteToPath(ctx, *out, result); err != nil {
		log.Fatalf("squab-count: writing output: %v", err)
	}
}
