// Package vis implements the Gio viewer for grid plans and the search
// that produces them.
package vis

import (
	"context"
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/interact"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/observer"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/state"
	"github.com/elektrokombinacija/cbsh-mapf/internal/vis/widgets"
)

// App is the viewer application.
type App struct {
	state  *state.State
	opts   algo.Options
	logger *zap.Logger

	theme     *material.Theme
	camera    *interact.Camera
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	tree      *widgets.SearchTree
}

// NewApp creates a viewer for inst. With paths the plan is played back
// directly; without, Run first searches for one with opts.
func NewApp(inst *core.Instance, paths []core.Path, opts algo.Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := state.NewState(inst, paths, clock.New())
	camera := interact.NewCamera()
	return &App{
		state:     st,
		opts:      opts,
		logger:    logger,
		theme:     material.NewTheme(),
		camera:    camera,
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st.Playback),
		toolbar:   widgets.NewToolbar(st),
		tree:      widgets.NewSearchTree(st.Search),
	}
}

// Run drives the window until it is closed. A background search is
// cancelled and awaited before Run returns.
func (a *App) Run(w *app.Window) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g errgroup.Group
	if !a.state.HasPlan() {
		g.Go(func() error {
			sol, err := observer.Run(ctx, a.state, a.opts, w.Invalidate)
			if err != nil {
				a.logger.Warn("search failed", zap.Error(err))
				return nil
			}
			a.logger.Info("search finished", zap.Int("cost", sol.Cost), zap.Int("expanded", sol.Stats.NodesExpanded))
			return nil
		})
	}

	err := a.loop(w)
	cancel()
	a.state.Search.Resume()
	_ = g.Wait()
	return err
}

func (a *App) loop(w *app.Window) error {
	var ops op.Ops
	tag := new(int)
	focused := false
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)
			if !focused {
				gtx.Execute(key.FocusCmd{Tag: tag})
				focused = true
			}

			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.state.Playback.Playing() {
				a.state.Playback.Advance()
				w.Invalidate()
			} else if len(a.state.ActiveCollisions()) > 0 || a.state.Search.Snapshot().Active {
				// keep the markers pulsing
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	pb := a.state.Playback
	switch e.Name {
	case key.NameSpace:
		pb.TogglePlay()
	case key.NameLeftArrow:
		pb.StepBack()
	case key.NameRightArrow:
		pb.StepForward()
	case key.NameHome:
		pb.Reset()
	case "+":
		pb.SetSpeed(pb.Speed() * 2)
	case "-":
		pb.SetSpeed(pb.Speed() / 2)
	case "R":
		a.camera.Reset()
	case "P":
		if a.state.Search.Snapshot().Paused {
			a.state.Search.Resume()
		} else {
			a.state.Search.Pause()
		}
	case "N":
		a.state.Search.Step()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return a.workspace.Layout(gtx, a.theme)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if snap := a.state.Search.Snapshot(); !snap.Active && snap.Expanded == 0 {
						return layout.Dimensions{}
					}
					return a.tree.Layout(gtx, a.theme)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
