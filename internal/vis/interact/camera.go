// Package interact handles pan and zoom of the grid view.
package interact

import (
	"gioui.org/io/pointer"
)

const (
	defaultScale = 40
	minScale     = 4
	maxScale     = 200
	zoomStep     = 1.1
)

// Camera maps cell coordinates to screen pixels. Scale is the size of a
// cell in pixels and Offset the screen position of cell (0, 0).
type Camera struct {
	OffsetX, OffsetY float32
	Scale            float32

	fitted       bool
	dragging     bool
	lastX, lastY float32
}

// NewCamera creates a camera that fits the grid on first layout.
func NewCamera() *Camera {
	return &Camera{OffsetX: defaultScale, OffsetY: defaultScale, Scale: defaultScale}
}

// Reset refits the view on the next layout.
func (c *Camera) Reset() {
	c.fitted = false
}

// WorldToScreen converts cell coordinates to screen pixels.
func (c *Camera) WorldToScreen(x, y float64) (float32, float32) {
	return float32(x)*c.Scale + c.OffsetX, float32(y)*c.Scale + c.OffsetY
}

// ScreenToWorld converts screen pixels to cell coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (float64, float64) {
	return float64((sx - c.OffsetX) / c.Scale), float64((sy - c.OffsetY) / c.Scale)
}

// HandleEvent pans on drag and zooms on scroll around the pointer.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		c.dragging = true
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y
	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y
	case pointer.Release:
		c.dragging = false
	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/zoomStep, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(zoomStep, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan moves the view by a screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy scales the view keeping the cell under (cx, cy) in place.
func (c *Camera) ZoomBy(factor, cx, cy float32) {
	wx, wy := c.ScreenToWorld(cx, cy)
	c.Scale = clamp(c.Scale*factor, minScale, maxScale)
	nx, ny := c.WorldToScreen(wx, wy)
	c.Pan(cx-nx, cy-ny)
}

// FitGrid centers a width x height grid in the screen, once per Reset.
// Cell centers sit on integer coordinates, so the grid spans
// [-0.5, width-0.5] x [-0.5, height-0.5].
func (c *Camera) FitGrid(width, height int, screenW, screenH, margin float32) {
	if c.fitted || width <= 0 || height <= 0 || screenW <= 2*margin || screenH <= 2*margin {
		return
	}
	c.fitted = true
	c.Scale = clamp(min((screenW-2*margin)/float32(width), (screenH-2*margin)/float32(height)), minScale, maxScale)
	c.OffsetX = screenW/2 - (float32(width)/2-0.5)*c.Scale
	c.OffsetY = screenH/2 - (float32(height)/2-0.5)*c.Scale
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
