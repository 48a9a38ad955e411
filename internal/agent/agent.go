// Package agent wires the world view, the executor and the control manager
// into the host tick loop, and exposes the user-level operations on top.
package agent

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/behavior"
	"voxelpilot.ai/internal/config"
	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/executor"
	"voxelpilot.ai/internal/protocol"
	"voxelpilot.ai/internal/trace"
	"voxelpilot.ai/internal/waypoint"
	"voxelpilot.ai/internal/worldview"
)

var (
	ErrNoProcessInControl = errors.New("agent: no process in control")
	ErrNoETA              = errors.New("agent: no estimate available")
	ErrNoPosition         = errors.New("agent: position not known yet")
	ErrNoWaypointStore    = errors.New("agent: waypoints are not enabled")
)

type Agent struct {
	log  zerolog.Logger
	cfg  config.Config
	view *worldview.View
	exec *executor.Executor
	mgr  *control.Manager
	gate *control.PauseGate

	custom  *behavior.CustomGoal
	getTo   *behavior.GetToBlock
	mine    *behavior.Mine
	follow  *behavior.Follow
	explore *behavior.Explore
	build   *behavior.Build

	behaviors []behavior.Behavior
	observers []behavior.WorkObserver

	waypoints *waypoint.Store
	trace     *trace.Writer
}

// New builds an agent. The waypoint store and trace writer are optional.
func New(cfg config.Config, log zerolog.Logger, wps *waypoint.Store, tr *trace.Writer) (*Agent, error) {
	log = log.With().Str("agent", cfg.AgentName).Logger()
	view := worldview.New()
	a := &Agent{
		log:       log,
		cfg:       cfg,
		view:      view,
		exec:      executor.New(log, executor.Config{StallTicks: cfg.StallTicks}),
		mgr:       control.NewManager(log),
		gate:      control.NewPauseGate(),
		custom:    behavior.NewCustomGoal(log, view),
		getTo:     behavior.NewGetToBlock(log, view, cfg.MineScanLimit),
		mine:      behavior.NewMine(log, view, cfg.MineScanLimit),
		follow:    behavior.NewFollow(log, view, cfg.FollowDistance),
		explore:   behavior.NewExplore(log, view, cfg.ExploreRadius, cfg.ExploreSeed),
		build:     behavior.NewBuild(log),
		waypoints: wps,
		trace:     tr,
	}
	a.behaviors = []behavior.Behavior{a.follow, a.mine, a.custom, a.getTo, a.build, a.explore}
	a.observers = []behavior.WorkObserver{a.mine, a.build}

	if err := a.mgr.Register(a.gate); err != nil {
		return nil, err
	}
	for _, b := range a.behaviors {
		if err := a.mgr.Register(b); err != nil {
			return nil, fmt.Errorf("register %s: %w", b.DisplayName(), err)
		}
	}
	return a, nil
}

func (a *Agent) Manager() *control.Manager { return a.mgr }
func (a *Agent) View() *worldview.View     { return a.view }

func (a *Agent) OnWelcome(w protocol.WelcomeMsg) {
	a.view.Welcome(w)
	a.exec.Reset()
}

func (a *Agent) OnCatalog(c protocol.CatalogMsg) {
	if err := a.view.ApplyCatalog(c); err != nil {
		a.log.Warn().Err(err).Str("catalog", c.Name).Msg("catalog ignored")
	}
}

func (a *Agent) OnObs(o protocol.ObsMsg) *protocol.ActMsg { return a.Step(o) }

// Step runs one host tick: fold the observation in, arbitrate, and turn the
// winning command into an ACT. It must only be called from one goroutine.
func (a *Agent) Step(obs protocol.ObsMsg) *protocol.ActMsg {
	if err := a.view.Apply(obs); err != nil {
		a.log.Debug().Err(err).Uint64("tick", obs.Tick).Msg("voxel frame skipped")
	}
	sig := a.exec.Observe(obs)
	for _, f := range sig.Finished {
		for _, o := range a.observers {
			o.WorkFinished(f.Work, f.OK, f.Code)
		}
	}
	cmd, ok := a.mgr.Tick(sig.CalcFailed, sig.SafeToCancel)
	act := a.exec.Apply(cmd, ok)
	a.record(obs.Tick, sig, act)
	return act
}

func (a *Agent) record(worldTick uint64, sig executor.Signals, act *protocol.ActMsg) {
	if a.trace == nil {
		return
	}
	e := trace.Entry{
		WorldTick:    worldTick,
		Seq:          a.mgr.Ticks(),
		CalcFailed:   sig.CalcFailed,
		SafeToCancel: sig.SafeToCancel,
		Paused:       a.gate.Paused(),
	}
	if r := a.mgr.MostRecent(); r != nil {
		e.Process = r.Name
		e.Command = r.Command.Type.String()
		if r.Command.Goal != nil {
			e.Goal = r.Command.Goal.String()
		}
		e.Priority = control.FinitePriority(r.Priority)
	}
	if act != nil {
		e.Tasks, e.Cancels = len(act.Tasks), len(act.Cancel)
	}
	if _, err := a.trace.Record(e); err != nil {
		a.log.Warn().Err(err).Msg("trace write failed")
	}
}

// stopOthers stops every behavior except keep, so a new order replaces the
// previous one instead of queueing behind it.
func (a *Agent) stopOthers(keep behavior.Behavior) {
	for _, b := range a.behaviors {
		if b != keep {
			b.Stop()
		}
	}
}
