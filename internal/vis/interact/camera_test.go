package interact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorldScreenRoundTrip(t *testing.T) {
	c := NewCamera()
	c.Pan(13, -7)
	sx, sy := c.WorldToScreen(2.5, 3)
	x, y := c.ScreenToWorld(sx, sy)
	require.InDelta(t, 2.5, x, 1e-6)
	require.InDelta(t, 3, y, 1e-6)
}

func TestZoomKeepsAnchor(t *testing.T) {
	c := NewCamera()
	wx, wy := c.ScreenToWorld(300, 200)
	c.ZoomBy(2, 300, 200)
	require.Equal(t, float32(80), c.Scale)
	x, y := c.ScreenToWorld(300, 200)
	require.InDelta(t, wx, x, 1e-4)
	require.InDelta(t, wy, y, 1e-4)

	c.ZoomBy(1000, 0, 0)
	require.Equal(t, float32(maxScale), c.Scale)
}

func TestFitGrid(t *testing.T) {
	c := NewCamera()
	c.FitGrid(10, 5, 520, 520, 10)
	require.Equal(t, float32(50), c.Scale)
	// the grid center lands on the screen center
	sx, sy := c.WorldToScreen(4.5, 2)
	require.InDelta(t, 260, sx, 1e-3)
	require.InDelta(t, 260, sy, 1e-3)

	// a second fit is ignored until Reset
	c.FitGrid(2, 2, 520, 520, 10)
	require.Equal(t, float32(50), c.Scale)
	c.Reset()
	c.FitGrid(2, 2, 520, 520, 10)
	require.Equal(t, float32(maxScale), c.Scale)
}
