// Package executor turns the winning control command of each tick into world
// server tasks, and reports back the signals processes decide on: whether the
// last movement failed and whether it is safe to interrupt what is running.
//
// The server runs at most one movement task and one work task per agent. The
// executor owns both slots; nothing else in the agent issues tasks.
package executor

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/protocol"
)

// Signals is what the executor learned from one observation.
type Signals struct {
	CalcFailed   bool
	SafeToCancel bool
	Finished     []Finished
}

// Finished reports the end of a work task.
type Finished struct {
	Work goal.Work
	OK   bool
	Code string
}

type slot int

const (
	slotMove slot = iota
	slotWork
)

type task struct {
	ref    string // client request id
	id     string // server task id, empty until acknowledged
	slot   slot
	target goal.Pos
	tol    float64
	work   goal.Work
	// drop asks for a cancel as soon as the server id is known.
	drop bool
}

type Config struct {
	// StallTicks without getting closer to the goal count as a failed path.
	StallTicks int
}

type Executor struct {
	log   zerolog.Logger
	cfg   Config
	newID func() string

	mu      sync.Mutex
	agentID string
	tick    uint64
	self    goal.Pos

	goal     goal.Goal
	goalKey  string
	hold     bool
	workDone string

	move     *task
	work     *task
	byRef    map[string]*task
	byID     map[string]*task
	toCancel []string

	best         float64
	lastProgress uint64

	segmentTicks int
	hasSegment   bool
}

func New(log zerolog.Logger, cfg Config) *Executor {
	if cfg.StallTicks <= 0 {
		cfg.StallTicks = 40
	}
	return &Executor{
		log:   log.With().Str("component", "executor").Logger(),
		cfg:   cfg,
		newID: func() string { return uuid.NewString() },
		byRef: map[string]*task{},
		byID:  map[string]*task{},
	}
}

// Reset forgets every task; the server drops them when a session ends.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.move, e.work = nil, nil
	e.byRef, e.byID = map[string]*task{}, map[string]*task{}
	e.toCancel = nil
	e.hasSegment = false
}

// Observe folds one observation in and returns this tick's signals.
func (e *Executor) Observe(obs protocol.ObsMsg) Signals {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick = obs.Tick
	if obs.AgentID != "" {
		e.agentID = obs.AgentID
	}
	e.self = goal.FromArray(obs.Self.Pos)

	var sig Signals
	for _, ev := range obs.Events {
		switch ev.Type() {
		case protocol.EventActionResult:
			t, ok := e.byRef[ev.Ref()]
			if !ok {
				continue
			}
			delete(e.byRef, t.ref)
			if ev.Bool("ok") && ev.TaskID() != "" {
				t.id = ev.TaskID()
				if t.drop {
					e.toCancel = append(e.toCancel, t.id)
					continue
				}
				e.byID[t.id] = t
				continue
			}
			e.log.Debug().Str("ref", t.ref).Str("code", ev.Code()).Msg("task rejected")
			e.fail(t, ev.Code(), &sig)
		case protocol.EventTaskDone:
			t, ok := e.byID[ev.TaskID()]
			if !ok {
				continue
			}
			delete(e.byID, t.id)
			if t.slot == slotWork {
				sig.Finished = append(sig.Finished, Finished{Work: t.work, OK: true})
				e.workDone = e.goalKey
			}
			e.release(t)
		case protocol.EventTaskFail:
			t, ok := e.byID[ev.TaskID()]
			if !ok {
				continue
			}
			delete(e.byID, t.id)
			e.log.Debug().Str("task", t.id).Str("code", ev.Code()).Msg("task failed")
			e.fail(t, ev.Code(), &sig)
		}
	}

	e.hasSegment = false
	if e.move != nil && e.move.id != "" {
		for _, to := range obs.Tasks {
			if to.TaskID == e.move.id {
				e.segmentTicks, e.hasSegment = to.EtaTicks, true
			}
		}
	}

	if e.checkStall() {
		sig.CalcFailed = true
	}
	sig.SafeToCancel = e.work == nil
	return sig
}

// fail ends t. A transient failure is not a verdict on the goal: the move is
// planned again next tick and the work may be reissued.
func (e *Executor) fail(t *task, code string, sig *Signals) {
	if !protocol.IsKnownCode(code) {
		e.log.Warn().Str("code", code).Msg("unknown error code")
	}
	retry := protocol.Retryable(code)
	if t.slot == slotWork {
		sig.Finished = append(sig.Finished, Finished{Work: t.work, Code: code})
		if !retry {
			e.workDone = e.goalKey
		}
	} else if !t.drop && !retry {
		sig.CalcFailed = true
	}
	e.release(t)
}

func (e *Executor) release(t *task) {
	if e.move == t {
		e.move = nil
	}
	if e.work == t {
		e.work = nil
	}
}

// checkStall reports a failure when a travel goal has not come closer for
// StallTicks ticks. The stuck move is dropped so the next plan starts fresh.
func (e *Executor) checkStall() bool {
	if e.goal == nil || e.move == nil {
		return false
	}
	if e.tick < e.lastProgress {
		e.lastProgress = e.tick
	}
	h := e.goal.Heuristic(e.self)
	if h < e.best {
		e.best, e.lastProgress = h, e.tick
		return false
	}
	if e.tick-e.lastProgress < uint64(e.cfg.StallTicks) {
		return false
	}
	e.log.Debug().Str("goal", e.goalKey).Uint64("since", e.lastProgress).Msg("no progress, treating path as failed")
	e.lastProgress = e.tick
	e.dropTask(e.move)
	return true
}

// Apply executes the arbitration outcome. ok is false on an idle tick. The
// returned ACT is nil when there is nothing to tell the server.
func (e *Executor) Apply(cmd control.Command, ok bool) *protocol.ActMsg {
	e.mu.Lock()
	defer e.mu.Unlock()
	var tasks []protocol.TaskReq

	switch {
	case !ok || cmd.IsNoOp():
		// Nobody wants to move: stop walking, let running work finish.
		e.dropTask(e.move)
		e.setGoal(nil, false)
	case cmd.Type == control.CommandTravel || cmd.Type == control.CommandTravelAndHold:
		if cmd.Goal == nil {
			e.log.Warn().Str("command", cmd.String()).Msg("travel without a goal ignored")
			break
		}
		e.setGoal(cmd.Goal, cmd.Type == control.CommandTravelAndHold)
		tasks = e.plan()
	case cmd.Type == control.CommandRequestPause:
		if e.work == nil {
			e.dropTask(e.move)
		}
	case cmd.Type == control.CommandCancel:
		e.dropTask(e.move)
		e.dropTask(e.work)
		e.setGoal(nil, false)
	}

	if len(tasks) == 0 && len(e.toCancel) == 0 {
		return nil
	}
	act := &protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            e.tick,
		AgentID:         e.agentID,
		Tasks:           tasks,
		Cancel:          e.toCancel,
	}
	e.toCancel = nil
	return act
}

func (e *Executor) setGoal(g goal.Goal, hold bool) {
	key := ""
	if g != nil {
		key = g.String()
	}
	if key != e.goalKey {
		// Work started for the old goal is stale now.
		if e.work != nil && key != "" {
			e.dropTask(e.work)
		}
		e.goalKey, e.workDone = key, ""
		e.best, e.lastProgress = inf, e.tick
	}
	e.goal, e.hold = g, hold
}

func (e *Executor) plan() []protocol.TaskReq {
	var out []protocol.TaskReq
	if e.goal.IsInGoal(e.self) {
		w, isWorker := e.goal.(goal.Worker)
		if e.hold && isWorker && e.work == nil && e.workDone != e.goalKey {
			t := &task{ref: e.ref(), slot: slotWork, work: w.Work()}
			e.work = t
			e.byRef[t.ref] = t
			out = append(out, workReq(t))
		}
		return out
	}
	target, tol := e.goal.Target(e.self)
	if e.move != nil {
		if e.move.target == target && e.move.tol == tol {
			return out
		}
		if e.move.id == "" {
			// Cannot replace a move the server has not acknowledged yet.
			return out
		}
		e.dropTask(e.move)
	}
	t := &task{ref: e.ref(), slot: slotMove, target: target, tol: tol}
	e.move = t
	e.byRef[t.ref] = t
	return append(out, protocol.TaskReq{
		ID:        t.ref,
		Type:      protocol.TaskMoveTo,
		Target:    target.Array(),
		Tolerance: tol,
	})
}

// dropTask cancels t now when the server knows it, or on acknowledgement.
func (e *Executor) dropTask(t *task) {
	if t == nil {
		return
	}
	if t.id == "" {
		t.drop = true
	} else {
		delete(e.byID, t.id)
		e.toCancel = append(e.toCancel, t.id)
	}
	e.release(t)
}

func workReq(t *task) protocol.TaskReq {
	r := protocol.TaskReq{ID: t.ref, Type: string(t.work.Kind)}
	switch t.work.Kind {
	case goal.WorkMine:
		r.BlockPos = t.work.BlockPos.Array()
	case goal.WorkBuild:
		r.BlueprintID = t.work.BlueprintID
		r.Anchor = t.work.Anchor.Array()
		r.Rotation = t.work.Rotation
	}
	return r
}

func (e *Executor) ref() string { return "K_" + e.newID() }

// Goal is the goal currently executed, if any.
func (e *Executor) Goal() (goal.Goal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.goal, e.goal != nil
}

// Busy reports whether any task is outstanding.
func (e *Executor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.move != nil || e.work != nil
}
