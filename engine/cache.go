package engine

// A cacheEntry holds one memoized OR-node value, keyed by the assignment
// of its node's cache context.
type cacheEntry struct {
	value LogVal
	valid bool
}

// A contextCache memoizes OR-node values per pseudo-tree variable, keyed by
// a flattened encoding of the node's cache context assignment (spec §4.4,
// adaptive context-based caching). Each variable gets its own flat map from
// encoded context to value; the map is cleared wholesale whenever the
// variable's cache-reset condition fires.
type contextCache struct {
	tables []map[int64]cacheEntry // indexed by Var
	domain []int                  // domain sizes, for encoding contexts
	hits   int64
	misses int64
}

// newContextCache allocates an empty cache for a network with the given
// per-variable domain sizes.
func newContextCache(domains []int) *contextCache {
	c := &contextCache{tables: make([]map[int64]cacheEntry, len(domains)), domain: domains}
	for i := range c.tables {
		c.tables[i] = map[int64]cacheEntry{}
	}
	return c
}

// encodeContext flattens an assignment over ctx (variables, ascending) into
// a single key by mixed-radix encoding over their domain sizes.
func (c *contextCache) encodeContext(ctx []Var, assignment []Val) int64 {
	var key int64
	for _, v := range ctx {
		key = key*int64(c.domain[v]) + int64(assignment[v])
	}
	return key
}

// Lookup returns the cached value for variable v under the given context
// assignment, if present.
func (c *contextCache) Lookup(v Var, ctx []Var, assignment []Val) (LogVal, bool) {
	key := c.encodeContext(ctx, assignment)
	e, ok := c.tables[v][key]
	if !ok || !e.valid {
		c.misses++
		return 0, false
	}
	c.hits++
	return e.value, true
}

// Store records value for variable v under the given context assignment.
func (c *contextCache) Store(v Var, ctx []Var, assignment []Val, value LogVal) {
	key := c.encodeContext(ctx, assignment)
	c.tables[v][key] = cacheEntry{value: value, valid: true}
}

// Reset clears every cached entry for variable v, as triggered by an
// ancestor's CacheReset list when its value changes (spec §4.4).
func (c *contextCache) Reset(v Var) {
	c.tables[v] = map[int64]cacheEntry{}
}

// ResetAll clears the entire cache for variables vs.
func (c *contextCache) ResetAll(vs []Var) {
	for _, v := range vs {
		c.Reset(v)
	}
}

// HitRate returns the fraction of lookups that were hits, 0 if there were
// no lookups yet. ReportStats exports the underlying hit and miss counts.
func (c *contextCache) HitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}
