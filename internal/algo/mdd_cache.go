package algo

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru"
)

// MDDHandle refers to a diagram owned by an MDDCache. A handle becomes stale
// once its diagram is evicted; Get then reports false instead of returning
// a diagram built for another key.
type MDDHandle struct {
	slot uint32
	gen  uint32
}

// Valid reports whether the handle was ever issued.
func (h MDDHandle) Valid() bool { return h.gen != 0 }

type mddKey struct {
	agent int
	cost  int
	fp    uint64
}

type mddSlot struct {
	mdd   *MDD
	gen   uint32
	refs  int
	key   mddKey
	sig   []byte
	keyed bool
	idle  bool
}

// MDDCache shares immutable diagrams between search nodes. Identical
// (agent, constraint set, cost) requests get the same *MDD. Diagrams are
// reference counted; once unreferenced they are either freed or parked in
// a per-agent LRU of bounded size, from which a later request revives them.
type MDDCache struct {
	slots []mddSlot
	free  []uint32
	index map[mddKey]uint32
	idle  []*lru.Cache

	Built int
	Hits  int
}

// NewMDDCache creates a cache for numAgents agents keeping up to maxIdle
// unreferenced diagrams per agent. With maxIdle 0 a diagram is dropped as
// soon as no node references it.
func NewMDDCache(numAgents, maxIdle int) *MDDCache {
	c := &MDDCache{index: make(map[mddKey]uint32)}
	if maxIdle > 0 {
		c.idle = make([]*lru.Cache, numAgents)
		for i := range c.idle {
			// size is positive so NewWithEvict cannot fail
			c.idle[i], _ = lru.NewWithEvict(maxIdle, c.onEvict)
		}
	}
	return c
}

// Acquire returns a referenced handle to the diagram of agent at cost
// under cons, calling build only if no equal diagram is cached.
func (c *MDDCache) Acquire(agent, cost int, cons []Constraint, build func() *MDD) (MDDHandle, *MDD) {
	sig := canonical(cons)
	key := mddKey{agent: agent, cost: cost, fp: Fingerprint(cons)}

	if idx, ok := c.index[key]; ok {
		s := &c.slots[idx]
		if bytes.Equal(s.sig, sig) {
			c.Hits++
			s.refs++
			if s.idle {
				s.idle = false
				c.idle[agent].Remove(idx)
			}
			return MDDHandle{slot: idx, gen: s.gen}, s.mdd
		}
	}

	m := build()
	c.Built++
	idx := c.alloc()
	s := &c.slots[idx]
	s.mdd, s.refs, s.key, s.sig = m, 1, key, sig
	if _, taken := c.index[key]; !taken {
		c.index[key] = idx
		s.keyed = true
	}
	return MDDHandle{slot: idx, gen: s.gen}, m
}

// Get returns the diagram of a live handle.
func (c *MDDCache) Get(h MDDHandle) (*MDD, bool) {
	if int(h.slot) >= len(c.slots) {
		return nil, false
	}
	s := &c.slots[h.slot]
	if s.gen != h.gen || s.mdd == nil {
		return nil, false
	}
	return s.mdd, true
}

// Retain adds a reference to a live handle.
func (c *MDDCache) Retain(h MDDHandle) bool {
	if _, ok := c.Get(h); !ok {
		return false
	}
	s := &c.slots[h.slot]
	s.refs++
	if s.idle {
		s.idle = false
		c.idle[s.key.agent].Remove(h.slot)
	}
	return true
}

// Release drops one reference. Stale handles are ignored.
func (c *MDDCache) Release(h MDDHandle) {
	if _, ok := c.Get(h); !ok {
		return
	}
	s := &c.slots[h.slot]
	s.refs--
	if s.refs > 0 {
		return
	}
	if c.idle == nil || !s.keyed {
		c.drop(h.slot)
		return
	}
	s.idle = true
	c.idle[s.key.agent].Add(h.slot, struct{}{})
}

// Len returns the number of diagrams held, referenced or parked.
func (c *MDDCache) Len() int {
	return len(c.slots) - len(c.free)
}

// Reset frees every diagram and invalidates all handles.
func (c *MDDCache) Reset() {
	for i := range c.slots {
		if c.slots[i].mdd != nil {
			c.slots[i].refs = 0
			c.slots[i].idle = false
			c.drop(uint32(i))
		}
	}
	for _, l := range c.idle {
		l.Purge()
	}
}

func (c *MDDCache) onEvict(key, _ interface{}) {
	idx := key.(uint32)
	s := &c.slots[idx]
	// Remove is also called when a parked diagram is revived.
	if s.refs > 0 || !s.idle {
		return
	}
	s.idle = false
	c.drop(idx)
}

func (c *MDDCache) alloc() uint32 {
	if n := len(c.free); n > 0 {
		idx := c.free[n-1]
		c.free = c.free[:n-1]
		return idx
	}
	c.slots = append(c.slots, mddSlot{gen: 1})
	return uint32(len(c.slots) - 1)
}

func (c *MDDCache) drop(idx uint32) {
	s := &c.slots[idx]
	if s.keyed {
		delete(c.index, s.key)
	}
	gen := s.gen + 1
	if gen == 0 {
		gen = 1
	}
	*s = mddSlot{gen: gen}
	c.free = append(c.free, idx)
}
