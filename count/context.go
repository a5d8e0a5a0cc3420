package count

// Context is the running result of a counting pass: per-gene counts plus
// the bookkeeping totals spec.md §3 requires. It is created empty, mutated
// only by the counting engine, and safe to read once the input stream is
// exhausted.
type Context struct {
	// Counts maps gene name to the number of reads/pairs assigned to it.
	Counts map[string]int

	// NoFeature counts reads/pairs that touched no annotated gene, or whose
	// reference id was absent from the feature index.
	NoFeature int
	// Ambiguous counts reads/pairs whose gene-name set had cardinality >= 2.
	Ambiguous int

	LowQuality    int
	Unmapped      int
	Nonunique     int
	Duplicate     int
	Secondary     int
	Supplementary int
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{Counts: make(map[string]int)}
}

// addFilterResult increments the counter named by res. It panics if res is
// Kept, since a kept record contributes no bookkeeping total.
func (c *Context) addFilterResult(res FilterResult) {
	switch res {
	case LowQuality:
		c.LowQuality++
	case Unmapped:
		c.Unmapped++
	case Nonunique:
		c.Nonunique++
	case Duplicate:
		c.Duplicate++
	case Secondary:
		c.Secondary++
	case Supplementary:
		c.Supplementary++
	default:
		panic("count: addFilterResult called with Kept")
	}
}

// addIntersections applies the accounting rule of spec.md §4.G to a
// completed gene-name set for one record or pair.
func (c *Context) addIntersections(genes map[string]struct{}) {
	switch len(genes) {
	case 0:
		c.NoFeature++
	case 1:
		for name := range genes {
			c.Counts[name]++
		}
	default:
		c.Ambiguous++
	}
}

// Total returns the number of input records (single-end) or pairs
// (paired-end, including drained singletons) this Context has accounted
// for: the sum of all counts plus every bookkeeping counter.
func (c *Context) Total() int {
	total := c.NoFeature + c.Ambiguous + c.LowQuality + c.Unmapped +
		c.Nonunique + c.Duplicate + c.Secondary + c.Supplementary
	for _, n := range c.Counts {
		total += n
	}
	return total
}
