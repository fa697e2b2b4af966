package engine

import "testing"

func TestContextCacheLookupMiss(t *testing.T) {
	c := newContextCache([]int{2, 3})
	if _, ok := c.Lookup(0, []Var{1}, []Val{0, 1}); ok {
		t.Errorf("Lookup on an empty cache reported a hit")
	}
	if c.HitRate() != 0 {
		t.Errorf("HitRate on an empty cache = %v, want 0", c.HitRate())
	}
}

func TestContextCacheStoreLookup(t *testing.T) {
	c := newContextCache([]int{2, 3})
	assignment := []Val{0, 2}
	c.Store(0, []Var{1}, assignment, LogVal(-5))
	v, ok := c.Lookup(0, []Var{1}, assignment)
	if !ok {
		t.Fatalf("Lookup after Store missed")
	}
	if v != LogVal(-5) {
		t.Errorf("Lookup returned %v, want -5", v)
	}
}

func TestContextCacheDistinguishesContexts(t *testing.T) {
	c := newContextCache([]int{2, 3})
	c.Store(0, []Var{1}, []Val{0, 0}, LogVal(-1))
	if _, ok := c.Lookup(0, []Var{1}, []Val{0, 1}); ok {
		t.Errorf("Lookup hit under a different context assignment")
	}
}

func TestContextCacheReset(t *testing.T) {
	c := newContextCache([]int{2, 3})
	assignment := []Val{0, 1}
	c.Store(0, []Var{1}, assignment, LogVal(-2))
	c.Reset(0)
	if _, ok := c.Lookup(0, []Var{1}, assignment); ok {
		t.Errorf("Lookup hit after Reset cleared the variable's table")
	}
}

func TestContextCacheResetAllIsPerVariable(t *testing.T) {
	c := newContextCache([]int{2, 3})
	assignment := []Val{0, 1}
	c.Store(0, []Var{1}, assignment, LogVal(-2))
	c.Store(1, []Var{0}, assignment, LogVal(-3))
	c.ResetAll([]Var{0})
	if _, ok := c.Lookup(0, []Var{1}, assignment); ok {
		t.Errorf("variable 0's entry survived ResetAll([0])")
	}
	if _, ok := c.Lookup(1, []Var{0}, assignment); !ok {
		t.Errorf("variable 1's entry was cleared by ResetAll([0])")
	}
}

func TestContextCacheHitRate(t *testing.T) {
	c := newContextCache([]int{2, 2})
	c.Store(0, []Var{1}, []Val{0, 0}, ElemOne)
	c.Lookup(0, []Var{1}, []Val{0, 0}) // hit
	c.Lookup(0, []Var{1}, []Val{0, 1}) // different context assignment -> miss
	if hr := c.HitRate(); hr <= 0 || hr >= 1 {
		t.Errorf("HitRate() = %v, want strictly between 0 and 1 after a mixed hit/miss sequence", hr)
	}
}
