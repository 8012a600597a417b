package draw

import (
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/interact"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

// DrawPath draws a polyline through positions. width is in cells.
func DrawPath(gtx layout.Context, path []state.Pos, camera *interact.Camera, col color.NRGBA, width float32) {
	w := width * camera.Scale
	for i := 0; i+1 < len(path); i++ {
		x1, y1 := camera.WorldToScreen(path[i].X, path[i].Y)
		x2, y2 := camera.WorldToScreen(path[i+1].X, path[i+1].Y)
		drawSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawPathTrail draws the visited part of a path, fading towards the start.
func DrawPathTrail(gtx layout.Context, history []state.Pos, camera *interact.Camera, base color.NRGBA, width float32) {
	n := len(history)
	for i := 0; i+1 < n; i++ {
		frac := float32(i+1) / float32(n)
		col := base
		col.A = uint8(40 + 140*frac)
		x1, y1 := camera.WorldToScreen(history[i].X, history[i].Y)
		x2, y2 := camera.WorldToScreen(history[i+1].X, history[i+1].Y)
		drawSegment(gtx, x1, y1, x2, y2, width*camera.Scale*(0.4+0.6*frac), col)
	}
}

// DrawFuturePath draws the part of a path still ahead, dimmed.
func DrawFuturePath(gtx layout.Context, future []state.Pos, camera *interact.Camera, col color.NRGBA) {
	col.A = 70
	DrawPath(gtx, future, camera, col, 0.08)
}
