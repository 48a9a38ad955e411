// Package behavior holds the domain processes that compete for control of
// the agent: travelling to a goal, reaching a block type, mining, following,
// exploring and building.
//
// Every behavior is started and stopped by its owner. Losing control only
// resets per-run bookkeeping, so a paused behavior wins again on resume.
package behavior

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/protocol"
)

var (
	ErrNoGoal    = errors.New("behavior: no goal set")
	ErrNoBlocks  = errors.New("behavior: no block names given")
	ErrNoTargets = errors.New("behavior: nothing to follow")
)

// World is the read side of the world view behaviors decide on.
type World interface {
	Self() (goal.Pos, bool)
	BlockAt(p goal.Pos) (string, bool)
	FindBlocks(names []string, max int) []goal.Pos
	Entity(id string) (protocol.EntityObs, bool)
	EntitiesOfType(typ string) []protocol.EntityObs
}

// WorkObserver is told when a work task issued on its behalf ends.
type WorkObserver interface {
	WorkFinished(w goal.Work, ok bool, code string)
}

// Behavior is a control.Process its owner can stop.
type Behavior interface {
	control.Process
	Stop()
}

// idleGiveUp is how many ticks a search behavior waits for a candidate to show
// up in the view before it stops on its own.
const idleGiveUp = 100

type base struct {
	mu      sync.Mutex
	log     zerolog.Logger
	running bool
	// driving is set while the last command we issued is the one being executed.
	driving bool
}

func componentLog(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func (b *base) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *base) Priority() float64 { return control.DefaultPriority }
func (b *base) Temporary() bool   { return false }

func (b *base) OnLostControl() {
	b.mu.Lock()
	b.driving = false
	b.mu.Unlock()
}

// failed reports whether calcFailed concerns a command this behavior issued.
func (b *base) failed(calcFailed bool) bool { return calcFailed && b.driving }

// issue records that cmd is ours to execute and returns it.
func (b *base) issue(cmd control.Command) control.Command {
	b.driving = !cmd.IsNoOp()
	return cmd
}

func containsName(names []string, n string) bool {
	for _, x := range names {
		if x == n {
			return true
		}
	}
	return false
}
