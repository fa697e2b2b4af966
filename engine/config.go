package engine

import "time"

// Config collects every tunable recognized by the core (spec §6). Zero
// value is not directly usable; DefaultConfig returns sane defaults.
type Config struct {
	// Ordering.
	OrderIterations int
	OrderTime       time.Duration
	OrderTolerance  int
	WidthLimit      int

	// Pseudo-tree.
	OrChain    bool
	CacheBound int
	NoCaching  bool

	// MBE heuristic.
	IBound int
	Match  bool

	// FGLP heuristic: root, join-graph, and per-node budgets (spec §6
	// mplp{,s,t} / jglp{,s,t,i} / ndfglp{,s,t} option families).
	FGLPRoot     FGLPOptions
	FGLPJoin     FGLPOptions
	FGLPPerNode  FGLPOptions
	FGLPHeur     bool // use plain FGLP as the heuristic
	FGLPMBEHeur  bool // use FGLP-reparameterized factors as MBE's input
	UsePriority  bool

	// Search driver.
	AOStar      bool // use best-first AO* instead of depth-first BnB
	Rotate      bool
	RotateLimit int
	LDSDepth    int // 0 disables LDS

	// Resource limits.
	MaxTime time.Duration
}

// DefaultConfig returns the core's defaults: a moderate i-bound, full
// adaptive caching, no FGLP, plain depth-first BnB, no deadline.
func DefaultConfig() Config {
	return Config{
		OrderIterations: 1,
		OrderTolerance:  0,
		WidthLimit:      1 << 30,
		CacheBound:      1 << 30,
		IBound:          10,
		FGLPRoot:        FGLPOptions{Variant: FGLPPlain, MaxIterations: 0},
		FGLPJoin:        FGLPOptions{Variant: FGLPPlain, MaxIterations: 0},
		FGLPPerNode:     FGLPOptions{Variant: FGLPPlain, MaxIterations: 0},
	}
}

// EffectiveCacheBound returns -1 when NoCaching is set, otherwise
// CacheBound. Under -1, BuildPseudoTree gives every node an empty cache
// context and registers a cache reset for it on its nearest full-context
// ancestor, so cached values are still looked up and reused until that
// ancestor's AND node is entered again; caching is not switched off.
func (c Config) EffectiveCacheBound() int {
	if c.NoCaching {
		return -1
	}
	return c.CacheBound
}
