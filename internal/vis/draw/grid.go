package draw

import (
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/interact"
)

var (
	ColorCellFree     = color.NRGBA{R: 44, G: 48, B: 56, A: 255}
	ColorCellObstacle = color.NRGBA{R: 12, G: 12, B: 16, A: 255}
	ColorGridLine     = color.NRGBA{R: 60, G: 66, B: 76, A: 255}
)

// DrawGrid fills every cell of g, obstacles darker, with thin gaps
// between cells as grid lines.
func DrawGrid(gtx layout.Context, g *core.Grid, camera *interact.Camera) {
	x0, y0 := camera.WorldToScreen(-0.5, -0.5)
	drawRect(gtx, x0, y0, float32(g.Width)*camera.Scale, float32(g.Height)*camera.Scale, ColorGridLine)

	gap := max(camera.Scale*0.04, 1)
	size := camera.Scale - gap
	for loc := 0; loc < g.Size(); loc++ {
		c := g.Cell(loc)
		col := ColorCellFree
		if g.Blocked(loc) {
			col = ColorCellObstacle
		}
		x, y := camera.WorldToScreen(float64(c.X)-0.5, float64(c.Y)-0.5)
		drawRect(gtx, x+gap/2, y+gap/2, size, size, col)
	}
}

// DrawGoals marks each agent's goal cell with a hollow square in its color.
func DrawGoals(gtx layout.Context, inst *core.Instance, camera *interact.Camera) {
	s := camera.Scale * 0.7
	w := max(camera.Scale*0.06, 1)
	for i, a := range inst.Agents {
		col := AgentColor(i)
		x, y := camera.WorldToScreen(float64(a.Goal.X), float64(a.Goal.Y))
		x, y = x-s/2, y-s/2
		drawSegment(gtx, x, y, x+s, y, w, col)
		drawSegment(gtx, x+s, y, x+s, y+s, w, col)
		drawSegment(gtx, x+s, y+s, x, y+s, w, col)
		drawSegment(gtx, x, y+s, x, y, w, col)
	}
}
