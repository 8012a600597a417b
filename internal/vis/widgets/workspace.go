// Package widgets provides the Gio widgets of the viewer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/draw"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/interact"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

const fitMargin = 24

// Workspace draws the grid with the agents at the playback time.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
}

// NewWorkspace creates a workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{state: st, camera: camera}
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	g := w.state.Instance.Grid
	w.camera.FitGrid(g.Width, g.Height, float32(bounds.X), float32(bounds.Y), fitMargin)
	w.handlePointerEvents(gtx)

	draw.DrawGrid(gtx, g, w.camera)
	draw.DrawGoals(gtx, w.state.Instance, w.camera)

	if w.state.HasPlan() {
		for i := range w.state.Instance.Agents {
			col := draw.AgentColor(i)
			draw.DrawFuturePath(gtx, w.state.FuturePath(i), w.camera, col)
			draw.DrawPathTrail(gtx, w.state.PathHistory(i), w.camera, col, 0.12)
		}
		draw.DrawCollisions(gtx, w.state.ActiveCollisions(), w.camera, gtx.Now)
	}

	if snap := w.state.Search.Snapshot(); snap.Active {
		draw.DrawActiveConflict(gtx, snap.LastConflict, g, w.camera, gtx.Now)
	}

	draw.DrawAgents(gtx, w.state.CurrentPositions(), w.state.Arrived, w.camera)
	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.camera.HandleEvent(pe)
		}
	}
}
