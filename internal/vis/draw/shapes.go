// Package draw renders the grid, agents, paths and collisions.
package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

const circleSegments = 24

func circlePath(p *clip.Path, cx, cy, r float32) {
	p.MoveTo(f32.Pt(cx+r, cy))
	for i := 1; i <= circleSegments; i++ {
		angle := float64(i) * 2 * math.Pi / circleSegments
		p.LineTo(f32.Pt(cx+r*float32(math.Cos(angle)), cy+r*float32(math.Sin(angle))))
	}
	p.Close()
}

func drawFilledCircle(gtx layout.Context, cx, cy, r float32, col color.NRGBA) {
	var p clip.Path
	p.Begin(gtx.Ops)
	circlePath(&p, cx, cy, r)
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

// DrawCircleOutline draws a ring of the given stroke width.
func DrawCircleOutline(gtx layout.Context, cx, cy, r float32, col color.NRGBA, stroke float32) {
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: circleOp(gtx, cx, cy, r), Width: stroke}.Op())
}

func circleOp(gtx layout.Context, cx, cy, r float32) clip.PathSpec {
	var p clip.Path
	p.Begin(gtx.Ops)
	circlePath(&p, cx, cy, r)
	return p.End()
}

func drawSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx, dy := x2-x1, y2-y1
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 0.1 {
		return
	}
	px := -dy / length * width / 2
	py := dx / length * width / 2

	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(x1+px, y1+py))
	p.LineTo(f32.Pt(x2+px, y2+py))
	p.LineTo(f32.Pt(x2-px, y2-py))
	p.LineTo(f32.Pt(x1-px, y1-py))
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

func drawRect(gtx layout.Context, x, y, w, h float32, col color.NRGBA) {
	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(x, y))
	p.LineTo(f32.Pt(x+w, y))
	p.LineTo(f32.Pt(x+w, y+h))
	p.LineTo(f32.Pt(x, y+h))
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

func drawCross(gtx layout.Context, cx, cy, size, width float32, col color.NRGBA) {
	drawSegment(gtx, cx-size, cy-size, cx+size, cy+size, width, col)
	drawSegment(gtx, cx-size, cy+size, cx+size, cy-size, width, col)
}

// DrawLine draws a screen-space line.
func DrawLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	drawSegment(gtx, x1, y1, x2, y2, width, col)
}

// DrawDot draws a screen-space filled circle.
func DrawDot(gtx layout.Context, cx, cy, r float32, col color.NRGBA) {
	drawFilledCircle(gtx, cx, cy, r, col)
}
