package control

import "sync/atomic"

// PauseGate is the always-registered process that forces a pause instruction
// while the pause flag is set. How a pause is honored mid-motion is up to the
// executor; the gate asks for it unconditionally.
type PauseGate struct {
	paused atomic.Bool
}

func NewPauseGate() *PauseGate { return &PauseGate{} }

// Pause sets the flag; the next tick the gate preempts whoever is in control.
func (g *PauseGate) Pause() error {
	if !g.paused.CompareAndSwap(false, true) {
		return ErrAlreadyPaused
	}
	return nil
}

// Resume clears the flag. Control is not handed back to the previous process;
// it has to win the next tick on its own.
func (g *PauseGate) Resume() error {
	if !g.paused.CompareAndSwap(true, false) {
		return ErrNotPaused
	}
	return nil
}

// Clear drops the flag without complaining when it was not set.
func (g *PauseGate) Clear() { g.paused.Store(false) }

func (g *PauseGate) Paused() bool { return g.paused.Load() }

func (g *PauseGate) Active() bool      { return g.paused.Load() }
func (g *PauseGate) Priority() float64 { return PausePriority }
func (g *PauseGate) Temporary() bool   { return false }
func (g *PauseGate) OnLostControl()    {}
func (g *PauseGate) DisplayName() string {
	return "Pause/Resume Commands"
}

func (g *PauseGate) OnTick(bool, bool) Command { return RequestPause() }

// CancelRequest is a one-shot temporary process that pushes a single CANCEL
// instruction through arbitration. It goes inactive once the instruction has
// been handed out, and the manager drops it on the following tick.
type CancelRequest struct {
	issued atomic.Bool
	reason string
}

func NewCancelRequest(reason string) *CancelRequest {
	return &CancelRequest{reason: reason}
}

func (c *CancelRequest) Active() bool      { return !c.issued.Load() }
func (c *CancelRequest) Priority() float64 { return CancelPriority }
func (c *CancelRequest) Temporary() bool   { return true }
func (c *CancelRequest) OnLostControl()    {}

func (c *CancelRequest) DisplayName() string {
	if c.reason == "" {
		return "Cancel"
	}
	return "Cancel (" + c.reason + ")"
}

func (c *CancelRequest) OnTick(bool, bool) Command {
	c.issued.Store(true)
	return Cancel()
}

// Issued reports whether the cancel instruction has been handed out.
func (c *CancelRequest) Issued() bool { return c.issued.Load() }
