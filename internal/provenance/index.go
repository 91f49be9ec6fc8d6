package provenance

// Index is the full edge store. A newer compilation's edges for a given
// (templateUri, generatedUri) pair supersede older ones — spec.md §4.1's
// "Ordering" note — so AddEdges first drops any edge whose endpoints match
// the uris the incoming batch covers.
type Index struct {
	edges []Edge
}

// NewIndex returns an empty Index.
func NewIndex() *Index { return &Index{} }

// AddEdges inserts edges, superseding any existing edge sharing a
// (From.URI, To.URI) pair with an incoming one.
func (idx *Index) AddEdges(edges ...Edge) {
	if len(edges) == 0 {
		return
	}
	pairs := map[[2]string]bool{}
	for _, e := range edges {
		pairs[[2]string{e.From.URI, e.To.URI}] = true
	}
	kept := idx.edges[:0]
	for _, e := range idx.edges {
		if !pairs[[2]string{e.From.URI, e.To.URI}] {
			kept = append(kept, e)
		}
	}
	idx.edges = append(kept, edges...)
}

// RemoveDocument purges every edge whose either endpoint's uri matches.
func (idx *Index) RemoveDocument(uri string) {
	kept := idx.edges[:0]
	for _, e := range idx.edges {
		if e.From.URI == uri || e.To.URI == uri {
			continue
		}
		kept = append(kept, e)
	}
	idx.edges = kept
}

// FindByGenerated returns every edge whose generated-side span covers
// offset within uri.
func (idx *Index) FindByGenerated(uri string, offset int) []Edge {
	var out []Edge
	for _, e := range idx.edges {
		if e.From.URI == uri && e.From.Span.Contains(offset) {
			out = append(out, e)
		}
	}
	return out
}

// FindBySource returns every edge whose authored-side span covers offset
// within uri.
func (idx *Index) FindBySource(uri string, offset int) []Edge {
	var out []Edge
	for _, e := range idx.edges {
		if e.To.URI == uri && e.To.Span.Contains(offset) {
			out = append(out, e)
		}
	}
	return out
}

// LookupGenerated returns the narrowest generated-side match at
// (uri, offset): a member-level edge if one covers the point, else the
// containing expression-level edge.
func (idx *Index) LookupGenerated(uri string, offset int) (Edge, bool) {
	return narrowest(idx.FindByGenerated(uri, offset), func(e Edge) int { return e.From.Span.Len() })
}

// LookupSource returns the narrowest authored-side match at (uri, offset).
func (idx *Index) LookupSource(uri string, offset int) (Edge, bool) {
	return narrowest(idx.FindBySource(uri, offset), func(e Edge) int { return e.To.Span.Len() })
}

// LookupGeneratedWithPolicy is LookupGenerated widened by q's miss
// handling: RetryOnceOnMiss probes offset-1 and offset+1 once before
// giving up, RequireExactMappedSpan drops degraded hits, and
// FallbackToWholeTemplate substitutes wholeTemplate when nothing else
// matched.
func (idx *Index) LookupGeneratedWithPolicy(uri string, offset int, q Query, wholeTemplate Edge) (Edge, bool) {
	edge, ok := idx.LookupGenerated(uri, offset)
	if !ok && q.Policy == RetryOnceOnMiss {
		if e, found := idx.LookupGenerated(uri, offset-1); found {
			edge, ok = e, true
		} else if e, found := idx.LookupGenerated(uri, offset+1); found {
			edge, ok = e, true
		}
	}
	return q.Resolve(edge, ok, wholeTemplate)
}

// LookupSourceWithPolicy mirrors LookupGeneratedWithPolicy for the
// authored side.
func (idx *Index) LookupSourceWithPolicy(uri string, offset int, q Query, wholeTemplate Edge) (Edge, bool) {
	edge, ok := idx.LookupSource(uri, offset)
	if !ok && q.Policy == RetryOnceOnMiss {
		if e, found := idx.LookupSource(uri, offset-1); found {
			edge, ok = e, true
		} else if e, found := idx.LookupSource(uri, offset+1); found {
			edge, ok = e, true
		}
	}
	return q.Resolve(edge, ok, wholeTemplate)
}

func narrowest(edges []Edge, width func(Edge) int) (Edge, bool) {
	if len(edges) == 0 {
		return Edge{}, false
	}
	best := edges[0]
	for _, e := range edges[1:] {
		if width(e) < width(best) {
			best = e
		}
	}
	return best, true
}
