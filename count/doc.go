/*Package count implements the gene-level read counting engine: it turns a
  stream of aligned sam.Records and a per-reference feature index into a
  Context holding per-gene counts plus the standard bookkeeping totals
  (no_feature, ambiguous, and the filter-attributed counters).

  The package is organized leaves-first: PairPosition classifies a record's
  place in a pair, CigarIntervals projects a CIGAR into reference intervals,
  PairBuffer streams records into mate pairs, Filter drops records that
  shouldn't be counted, Features resolves the interval tree for a reference,
  and the entry points in engine.go compose all of the above into a Context.
*/
package count
