package cell

import lru "github.com/hashicorp/golang-lru/v2"

// LoadCache tracks, within one engine run, which cell hashes have already
// been charged the full load price. Subsequent loads of the same cell are
// charged the cheaper reload price (§4.4, §5 "cell load dedup").
//
// Bounded so a pathological program touching millions of distinct cells
// cannot grow the cache without bound; eviction only affects pricing (an
// evicted-then-revisited cell is re-charged the full price), never
// correctness.
type LoadCache struct {
	seen *lru.Cache[Hash, struct{}]
}

// NewLoadCache builds a cache holding up to capacity distinct cell hashes.
func NewLoadCache(capacity int) *LoadCache {
	c, err := lru.New[Hash, struct{}](capacity)
	if err != nil {
		// Only invalid (<=0) capacity reaches here; fall back to a small
		// default rather than propagating a constructor error through the
		// engine's own constructor chain.
		c, _ = lru.New[Hash, struct{}](1024)
	}
	return &LoadCache{seen: c}
}

// Touch records a load of c and reports whether this is the first time it
// has been seen (true => charge the full load price).
func (lc *LoadCache) Touch(c *Cell) (first bool) {
	h := c.Hash()
	if lc.seen.Contains(h) {
		return false
	}
	lc.seen.Add(h, struct{}{})
	return true
}
