// Package control arbitrates which behavior steers the agent on each tick.
//
// Behaviors implement Process and register with a Manager. Once per world tick
// the host calls Manager.Tick; the highest-priority active process that returns
// a real instruction wins and its Command goes to the executor.
package control

import "errors"

//go:generate mockgen -destination=mocks/mock_process.go -package=mocks voxelpilot.ai/internal/control Process

// Process is one behavior competing for control of the agent's movement.
//
// Processes are identified by interface equality, so implementations should be
// pointer types. OnTick is only called while Active reports true and must not
// block or panic; a process that hits an internal fault returns NoOp and goes
// inactive on a later tick.
type Process interface {
	// Active is a side-effect free query, read fresh every tick.
	Active() bool
	// Priority is re-read every tick; higher wins.
	Priority() float64
	// OnTick decides this tick's instruction. calcFailed and safeToCancel are
	// only valid for the current tick.
	OnTick(calcFailed, safeToCancel bool) Command
	// Temporary processes are unregistered automatically once inactive.
	Temporary() bool
	// OnLostControl fires once each time the process stops being in control,
	// and when it is unregistered.
	OnLostControl()
	// DisplayName is a diagnostic label.
	DisplayName() string
}

const (
	// DefaultPriority is the baseline for domain behaviors.
	DefaultPriority = -1.0
	// CancelPriority outranks every domain behavior. Domain processes that
	// boost themselves must stay below it.
	CancelPriority = 1_000_000.0
	// PausePriority outranks everything, including cancellation.
	PausePriority = 2_000_000.0
)

var (
	ErrNilProcess       = errors.New("control: nil process")
	ErrDuplicateProcess = errors.New("control: process already registered")
	ErrAlreadyPaused    = errors.New("control: already paused")
	ErrNotPaused        = errors.New("control: not paused")
)
