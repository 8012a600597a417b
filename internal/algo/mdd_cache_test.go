package algo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func countingBuilder(built *int) func() *MDD {
	return func() *MDD {
		*built++
		return &MDD{Levels: [][]*MDDNode{{{Loc: 0}}}}
	}
}

func TestMDDCacheSharesIdenticalRequests(t *testing.T) {
	c := NewMDDCache(2, 0)
	built := 0
	h1, m1 := c.Acquire(0, 3, []Constraint{Vertex(0, 1, 1), Vertex(0, 2, 2)}, countingBuilder(&built))
	h2, m2 := c.Acquire(0, 3, []Constraint{Vertex(0, 2, 2), Vertex(0, 1, 1)}, countingBuilder(&built))

	require.Same(t, m1, m2)
	require.Equal(t, h1, h2)
	require.Equal(t, 1, built)
	require.Equal(t, 1, c.Built)
	require.Equal(t, 1, c.Hits)

	// a different cost, agent or constraint set is a different diagram
	_, m3 := c.Acquire(0, 4, []Constraint{Vertex(0, 1, 1), Vertex(0, 2, 2)}, countingBuilder(&built))
	_, m4 := c.Acquire(1, 3, []Constraint{Vertex(0, 1, 1), Vertex(0, 2, 2)}, countingBuilder(&built))
	_, m5 := c.Acquire(0, 3, nil, countingBuilder(&built))
	require.NotSame(t, m1, m3)
	require.NotSame(t, m1, m4)
	require.NotSame(t, m1, m5)
	require.Equal(t, 4, built)
	require.Equal(t, 4, c.Len())
}

func TestMDDCacheFreesUnreferenced(t *testing.T) {
	c := NewMDDCache(1, 0)
	built := 0
	h1, _ := c.Acquire(0, 2, nil, countingBuilder(&built))
	h2, _ := c.Acquire(0, 2, nil, countingBuilder(&built))

	c.Release(h1)
	_, ok := c.Get(h2)
	require.True(t, ok, "one reference is left")

	c.Release(h2)
	_, ok = c.Get(h2)
	require.False(t, ok)
	require.Zero(t, c.Len())

	// a stale handle stays stale after its slot is reused
	h3, _ := c.Acquire(0, 2, nil, countingBuilder(&built))
	require.NotEqual(t, h2, h3)
	_, ok = c.Get(h2)
	require.False(t, ok)
	require.False(t, c.Retain(h2))
	c.Release(h2)
	_, ok = c.Get(h3)
	require.True(t, ok)
	require.Equal(t, 2, built)
}

func TestMDDCacheParksIdleDiagrams(t *testing.T) {
	c := NewMDDCache(1, 1)
	built := 0
	h1, m1 := c.Acquire(0, 2, nil, countingBuilder(&built))
	c.Release(h1)
	require.Equal(t, 1, c.Len())

	h1b, m1b := c.Acquire(0, 2, nil, countingBuilder(&built))
	require.Same(t, m1, m1b)
	require.Equal(t, h1, h1b)
	require.Equal(t, 1, built)

	// parking a second diagram evicts the first
	c.Release(h1b)
	h2, _ := c.Acquire(0, 3, nil, countingBuilder(&built))
	c.Release(h2)
	require.Equal(t, 1, c.Len())
	_, ok := c.Get(h1)
	require.False(t, ok)
	_, ok = c.Get(h2)
	require.True(t, ok)
}

func TestMDDCacheRetain(t *testing.T) {
	c := NewMDDCache(1, 1)
	built := 0
	h, m := c.Acquire(0, 2, nil, countingBuilder(&built))
	require.True(t, c.Retain(h))
	c.Release(h)
	c.Release(h)
	got, ok := c.Get(h)
	require.True(t, ok, "parked")
	require.Same(t, m, got)

	require.True(t, c.Retain(h), "revived from the idle list")
	c.Release(h)
}

func TestMDDCacheReset(t *testing.T) {
	c := NewMDDCache(2, 4)
	built := 0
	h1, _ := c.Acquire(0, 2, nil, countingBuilder(&built))
	h2, _ := c.Acquire(1, 2, nil, countingBuilder(&built))
	c.Release(h2)

	c.Reset()
	require.Zero(t, c.Len())
	_, ok := c.Get(h1)
	require.False(t, ok)
	_, ok = c.Get(h2)
	require.False(t, ok)

	_, m := c.Acquire(0, 2, nil, countingBuilder(&built))
	require.NotNil(t, m)
	require.Equal(t, 3, built)
}
