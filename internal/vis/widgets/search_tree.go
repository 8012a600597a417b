package widgets

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/draw"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
)

const (
	treePanelWidth = 300
	treeTop        = 40
	treeLevelGap   = 40
	treeMarginX    = 20
	treeNodeRadius = 6
)

var (
	ColorNodeExpanded = color.NRGBA{R: 80, G: 100, B: 130, A: 255}
	ColorNodeCurrent  = color.NRGBA{R: 255, G: 200, B: 80, A: 255}
	ColorNodeSolution = color.NRGBA{R: 80, G: 200, B: 120, A: 255}
	ColorTreeEdge     = color.NRGBA{R: 70, G: 80, B: 90, A: 255}
	colorStats        = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
)

// SearchTree draws the expanded part of the constraint tree together with
// the search counters.
type SearchTree struct {
	search  *state.SearchState
	scrollY float32
}

// NewSearchTree creates a tree panel over search.
func NewSearchTree(search *state.SearchState) *SearchTree {
	return &SearchTree{search: search}
}

// Layout renders the panel.
func (t *SearchTree) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := gtx.Constraints.Max.Y
	size := image.Point{X: treePanelWidth, Y: height}
	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255})
	t.handlePointerEvents(gtx, size)

	snap := t.search.Snapshot()
	layout.Inset{Left: unit.Dp(10), Top: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		label := material.Label(th, 14, "Constraint tree")
		label.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
		return label.Layout(gtx)
	})

	t.drawTree(gtx, snap, height)
	t.drawStats(gtx, th, snap)
	return layout.Dimensions{Size: size}
}

type nodePos struct {
	X, Y float32
}

// treeLayout spreads the nodes of each depth evenly across width, in ID
// order.
func treeLayout(nodes []algo.NodeInfo, width int) map[int]nodePos {
	levels := make(map[int][]int)
	for _, n := range nodes {
		levels[n.Depth] = append(levels[n.Depth], n.ID)
	}
	pos := make(map[int]nodePos, len(nodes))
	avail := float32(width - 2*treeMarginX)
	for depth, ids := range levels {
		sort.Ints(ids)
		for i, id := range ids {
			pos[id] = nodePos{
				X: treeMarginX + avail*float32(2*i+1)/float32(2*len(ids)),
				Y: float32(depth * treeLevelGap),
			}
		}
	}
	return pos
}

func (t *SearchTree) drawTree(gtx layout.Context, snap state.SearchSnapshot, height int) {
	if len(snap.Nodes) == 0 {
		return
	}
	pos := treeLayout(snap.Nodes, treePanelWidth)
	offset := treeTop - t.scrollY

	for _, n := range snap.Nodes {
		parent, ok := pos[n.ParentID]
		if !ok {
			continue
		}
		child := pos[n.ID]
		draw.DrawLine(gtx, parent.X, parent.Y+offset, child.X, child.Y+offset, 1.5, ColorTreeEdge)
	}
	for _, n := range snap.Nodes {
		p := pos[n.ID]
		y := p.Y + offset
		if y < treeTop/2 || y > float32(height) {
			continue
		}
		draw.DrawDot(gtx, p.X, y, treeNodeRadius, nodeColor(n.ID, snap))
	}
}

func nodeColor(id int, snap state.SearchSnapshot) color.NRGBA {
	switch id {
	case snap.SolutionNode:
		return ColorNodeSolution
	case snap.CurrentNode:
		return ColorNodeCurrent
	}
	return ColorNodeExpanded
}

func (t *SearchTree) drawStats(gtx layout.Context, th *material.Theme, snap state.SearchSnapshot) {
	lines := []string{
		fmt.Sprintf("Expanded :: %d", snap.Expanded),
		fmt.Sprintf("Conflicts :: %d", snap.Conflicts),
		fmt.Sprintf("Lower bound :: %d", snap.LowerBound),
	}
	kinds := make([]algo.ConflictType, 0, len(snap.ByType))
	for k := range snap.ByType {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		lines = append(lines, fmt.Sprintf("  %s :: %d", k, snap.ByType[k]))
	}
	if snap.LastConflict != nil {
		lines = append(lines, "Last :: "+snap.LastConflict.String())
	}
	if snap.Err != nil {
		lines = append(lines, "Error :: "+snap.Err.Error())
	}

	children := make([]layout.FlexChild, 0, len(lines))
	for _, line := range lines {
		label := material.Label(th, 11, line)
		label.Color = colorStats
		children = append(children, layout.Rigid(label.Layout))
	}
	layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Bottom: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
		})
	})
}

func (t *SearchTree) handlePointerEvents(gtx layout.Context, size image.Point) {
	area := clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  t,
			Kinds:   pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -1000, Max: 1000},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			t.scrollY = max(0, t.scrollY+pe.Scroll.Y)
		}
	}
}
