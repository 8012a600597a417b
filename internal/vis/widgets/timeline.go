package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

const (
	timelineHeight = 60
	timelineMargin = 20
)

// Timeline is the playback scrubber.
type Timeline struct {
	playback *state.PlaybackState
	dragging bool
}

// NewTimeline creates a timeline over pb.
func NewTimeline(pb *state.PlaybackState) *Timeline {
	return &Timeline{playback: pb}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	width := gtx.Constraints.Max.X
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(image.Rect(0, 0, width, timelineHeight)).Op())

	trackWidth := width - 2*timelineMargin
	t.handlePointerEvents(gtx, trackWidth)

	trackY, trackH := timelineHeight/2, 6
	track := image.Rect(timelineMargin, trackY-trackH/2, timelineMargin+trackWidth, trackY+trackH/2)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(track).Op())

	// one tick per timestep while they stay apart
	if maxT := t.playback.MaxTime(); maxT > 0 && float64(trackWidth)/maxT >= 6 {
		for step := 0; float64(step) <= maxT; step++ {
			x := timelineMargin + int(float64(trackWidth)*float64(step)/maxT)
			paint.FillShape(gtx.Ops, color.NRGBA{R: 90, G: 95, B: 100, A: 255}, clip.Rect(image.Rect(x, trackY+trackH, x+1, trackY+trackH+4)).Op())
		}
	}

	fill := int(float64(trackWidth) * t.playback.Progress())
	if fill > 0 {
		r := image.Rect(timelineMargin, trackY-trackH/2, timelineMargin+fill, trackY+trackH/2)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255}, clip.Rect(r).Op())
	}
	head := timelineMargin + fill
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, clip.Rect(image.Rect(head-6, trackY-6, head+6, trackY+6)).Op())

	t.drawLabels(gtx, th)
	return layout.Dimensions{Size: image.Point{X: width, Y: timelineHeight}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	current := material.Label(th, 12, fmt.Sprintf("t=%.1f", t.playback.Time()))
	current.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	speed := material.Label(th, 12, fmt.Sprintf("%gx", t.playback.Speed()))
	speed.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}
	maxT := material.Label(th, 12, fmt.Sprintf("%.0f", t.playback.MaxTime()))
	maxT.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(timelineMargin), Right: unit.Dp(timelineMargin)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(current.Layout),
			layout.Rigid(speed.Layout),
			layout.Rigid(maxT.Layout),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context, trackWidth int) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{Target: t, Kinds: pointer.Press | pointer.Drag | pointer.Release})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			t.dragging = true
			t.seek(pe.Position.X, trackWidth)
		case pointer.Drag:
			if t.dragging {
				t.seek(pe.Position.X, trackWidth)
			}
		case pointer.Release:
			t.dragging = false
		}
	}
}

func (t *Timeline) seek(screenX float32, trackWidth int) {
	if trackWidth <= 0 {
		return
	}
	progress := (float64(screenX) - timelineMargin) / float64(trackWidth)
	progress = max(0, min(progress, 1))
	t.playback.SetTime(progress * t.playback.MaxTime())
}
