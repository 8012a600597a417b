package draw

import (
	"image/color"
	"math"

	"gioui.org/layout"

	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/interact"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

var palette = []color.NRGBA{
	{R: 230, G: 90, B: 80, A: 255},
	{R: 80, G: 160, B: 230, A: 255},
	{R: 90, G: 200, B: 110, A: 255},
	{R: 240, G: 190, B: 70, A: 255},
	{R: 180, G: 110, B: 220, A: 255},
	{R: 70, G: 200, B: 200, A: 255},
	{R: 240, G: 130, B: 180, A: 255},
	{R: 160, G: 160, B: 90, A: 255},
}

// AgentColor returns the color of agent i. Colors repeat after the
// palette is exhausted, darkened once per round.
func AgentColor(i int) color.NRGBA {
	col := palette[i%len(palette)]
	shade := math.Pow(0.75, float64(i/len(palette)%3))
	col.R = uint8(float64(col.R) * shade)
	col.G = uint8(float64(col.G) * shade)
	col.B = uint8(float64(col.B) * shade)
	return col
}

// DrawAgents draws every agent at its position. Agents that reached their
// goal get a white rim.
func DrawAgents(gtx layout.Context, positions []state.Pos, arrived func(int) bool, camera *interact.Camera) {
	r := camera.Scale * 0.35
	for i, p := range positions {
		x, y := camera.WorldToScreen(p.X, p.Y)
		drawFilledCircle(gtx, x, y, r, AgentColor(i))
		if arrived != nil && arrived(i) {
			DrawCircleOutline(gtx, x, y, r, color.NRGBA{R: 255, G: 255, B: 255, A: 220}, max(r*0.15, 1))
		}
	}
}
