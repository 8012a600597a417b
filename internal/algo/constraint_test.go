package algo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstraintTableLookups(t *testing.T) {
	ct := NewConstraintTable(9, []Constraint{
		Vertex(0, 5, 3),
		Range(0, 2, 4, 6),
		Edge(0, 1, 2, 4),
	})

	require.True(t, ct.VertexBlocked(5, 3))
	require.False(t, ct.VertexBlocked(5, 2))
	require.False(t, ct.VertexBlocked(5, 4))
	for tt := 4; tt <= 6; tt++ {
		require.True(t, ct.VertexBlocked(2, tt))
	}
	require.False(t, ct.VertexBlocked(2, 3))
	require.False(t, ct.VertexBlocked(2, 7))

	require.True(t, ct.EdgeBlocked(1, 2, 4))
	require.False(t, ct.EdgeBlocked(2, 1, 4))
	require.False(t, ct.EdgeBlocked(1, 2, 5))
	require.True(t, ct.Blocked(1, 2, 4))
	require.True(t, ct.Blocked(3, 2, 5))
	require.False(t, ct.Blocked(1, 1, 4))

	require.Equal(t, 3, ct.Len())
	require.Equal(t, 6, ct.MaxTime())
}

func TestConstraintTableSettleTime(t *testing.T) {
	tests := []struct {
		name string
		cons []Constraint
		want int
	}{
		{name: "unconstrained", want: 0},
		{name: "vertex on goal", cons: []Constraint{Vertex(0, 4, 7)}, want: 8},
		{name: "vertex elsewhere", cons: []Constraint{Vertex(0, 3, 7)}, want: 0},
		{name: "length", cons: []Constraint{Length(0, 9)}, want: 10},
		{name: "length and vertex", cons: []Constraint{Length(0, 2), Vertex(0, 4, 5)}, want: 6},
		{name: "unbounded range", cons: []Constraint{Range(0, 4, 3, Forever)}, want: Forever},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := NewConstraintTable(9, tt.cons)
			require.Equal(t, tt.want, ct.SettleTime(4))
		})
	}
}

func TestConstraintTableClone(t *testing.T) {
	ct := NewConstraintTable(9, []Constraint{Vertex(0, 1, 1)})
	cp := ct.Clone()
	cp.Add(Vertex(0, 2, 2))
	cp.Add(Length(0, 4))

	require.False(t, ct.VertexBlocked(2, 2))
	require.Equal(t, -1, ct.LengthMin())
	require.True(t, cp.VertexBlocked(2, 2))
	require.Equal(t, 4, cp.LengthMin())
}

func TestFingerprintIgnoresOrderAndDuplicates(t *testing.T) {
	a := []Constraint{Vertex(0, 1, 2), Edge(0, 3, 4, 5), Range(0, 6, 1, Forever)}
	b := []Constraint{Range(0, 6, 1, Forever), Vertex(0, 1, 2), Edge(0, 3, 4, 5), Vertex(0, 1, 2)}
	require.Equal(t, Fingerprint(a), Fingerprint(b))
	require.Equal(t, canonical(a), canonical(b))

	c := []Constraint{Vertex(0, 1, 3)}
	require.NotEqual(t, canonical(a), canonical(c))
}

func TestConstraintString(t *testing.T) {
	require.Equal(t, "<a1 4 @2>", Vertex(1, 4, 2).String())
	require.Equal(t, "<a0 1->2 @3>", Edge(0, 1, 2, 3).String())
	require.Equal(t, "<a2 5 @[1,inf)>", Range(2, 5, 1, Forever).String())
	require.Equal(t, "<a2 5 @[1,4]>", Range(2, 5, 1, 4).String())
	require.Equal(t, "<a3 len>7>", Length(3, 7).String())
}
