package draw

import (
	"image/color"
	"math"
	"time"

	"gioui.org/layout"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/sim"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/interact"
)

var (
	ColorCollisionVertex = color.NRGBA{R: 255, G: 80, B: 80, A: 220}
	ColorCollisionEdge   = color.NRGBA{R: 255, G: 150, B: 80, A: 220}
	ColorConstraint      = color.NRGBA{R: 200, G: 100, B: 100, A: 160}
)

func pulse(now time.Time) float32 {
	return float32(math.Sin(float64(now.UnixMilli())/200)*0.3 + 0.7)
}

// DrawCollisions marks collisions of the plan being played back.
func DrawCollisions(gtx layout.Context, cols []sim.Collision, camera *interact.Camera, now time.Time) {
	p := pulse(now)
	for _, c := range cols {
		if c.Edge {
			x1, y1 := camera.WorldToScreen(float64(c.Cell.X), float64(c.Cell.Y))
			x2, y2 := camera.WorldToScreen(float64(c.Other.X), float64(c.Other.Y))
			col := ColorCollisionEdge
			col.A = uint8(float32(col.A) * p)
			drawSegment(gtx, x1, y1, x2, y2, camera.Scale*0.12, col)
			drawCross(gtx, (x1+x2)/2, (y1+y2)/2, camera.Scale*0.2*p, max(camera.Scale*0.06, 1), ColorCollisionEdge)
			continue
		}
		x, y := camera.WorldToScreen(float64(c.Cell.X), float64(c.Cell.Y))
		r := camera.Scale * 0.5 * p
		DrawCircleOutline(gtx, x, y, r, ColorCollisionVertex, max(camera.Scale*0.08, 1))
		drawFilledCircle(gtx, x, y, r*0.3, ColorCollisionVertex)
	}
}

// DrawActiveConflict highlights the conflict the search chose last,
// together with the constraints it imposes.
func DrawActiveConflict(gtx layout.Context, c *algo.Conflict, g *core.Grid, camera *interact.Camera, now time.Time) {
	if c == nil {
		return
	}
	for _, cons := range append(append([]algo.Constraint(nil), c.Constraints1...), c.Constraints2...) {
		drawConstraint(gtx, cons, g, camera)
	}

	cell := g.Cell(c.Loc1)
	x, y := camera.WorldToScreen(float64(cell.X), float64(cell.Y))
	if c.Loc2 >= 0 {
		other := g.Cell(c.Loc2)
		x2, y2 := camera.WorldToScreen(float64(other.X), float64(other.Y))
		drawSegment(gtx, x, y, x2, y2, camera.Scale*0.1, ColorCollisionEdge)
	}

	secs := float64(now.UnixMilli()) / 1000
	for i := 0; i < 3; i++ {
		ripple := float32(math.Mod(secs+float64(i)*0.3, 1))
		col := ColorCollisionVertex
		col.A = uint8((1 - ripple) * 200)
		DrawCircleOutline(gtx, x, y, camera.Scale*(0.25+0.75*ripple), col, max(camera.Scale*0.05, 1))
	}
	drawFilledCircle(gtx, x, y, camera.Scale*0.15, ColorCollisionVertex)
}

func drawConstraint(gtx layout.Context, cons algo.Constraint, g *core.Grid, camera *interact.Camera) {
	if cons.Loc < 0 || cons.Loc >= g.Size() {
		return
	}
	cell := g.Cell(cons.Loc)
	x, y := camera.WorldToScreen(float64(cell.X), float64(cell.Y))
	if cons.To >= 0 && cons.To < g.Size() {
		to := g.Cell(cons.To)
		x2, y2 := camera.WorldToScreen(float64(to.X), float64(to.Y))
		drawSegment(gtx, x, y, x2, y2, max(camera.Scale*0.05, 1), ColorConstraint)
	}
	r := camera.Scale * 0.3
	DrawCircleOutline(gtx, x, y, r, ColorConstraint, max(camera.Scale*0.05, 1))
	drawSegment(gtx, x-r*0.7, y-r*0.7, x+r*0.7, y+r*0.7, max(camera.Scale*0.05, 1), ColorConstraint)
}
