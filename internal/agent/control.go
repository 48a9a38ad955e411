package agent

import (
	"encoding/json"
	"fmt"

	"voxelpilot.ai/internal/control"
)

func (a *Agent) Pause() error {
	if err := a.gate.Pause(); err != nil {
		return err
	}
	a.log.Info().Msg("paused")
	return nil
}

func (a *Agent) Resume() error {
	if err := a.gate.Resume(); err != nil {
		return err
	}
	a.log.Info().Msg("resumed")
	return nil
}

func (a *Agent) Paused() bool { return a.gate.Paused() }

// Cancel clears a pause, stops every behavior and pushes one CANCEL through
// arbitration so the executor drops whatever it is doing.
func (a *Agent) Cancel() error {
	a.gate.Clear()
	a.stopOthers(nil)
	if err := a.mgr.Register(control.NewCancelRequest("user")); err != nil {
		return err
	}
	a.log.Info().Msg("cancelled")
	return nil
}

// ProcStatus describes the process in control after the last tick.
type ProcStatus struct {
	Tick        uint64  `json:"tick"`
	Class       string  `json:"class"`
	Name        string  `json:"name"`
	Priority    float64 `json:"priority"`
	Temporary   bool    `json:"temporary"`
	Command     string  `json:"command"`
	CommandType string  `json:"command_type"`
	Goal        string  `json:"goal,omitempty"`
}

func (st ProcStatus) MarshalJSON() ([]byte, error) {
	type plain ProcStatus
	return json.Marshal(struct {
		plain
		Priority *float64 `json:"priority"`
	}{plain: plain(st), Priority: control.FinitePriority(st.Priority)})
}

func (a *Agent) Proc() (ProcStatus, error) {
	r := a.mgr.MostRecent()
	if r == nil {
		return ProcStatus{}, ErrNoProcessInControl
	}
	st := ProcStatus{
		Tick:        r.Tick,
		Class:       fmt.Sprintf("%T", r.Process),
		Name:        r.Name,
		Priority:    r.Priority,
		Temporary:   r.Temporary,
		Command:     r.Command.String(),
		CommandType: r.Command.Type.String(),
	}
	if r.Command.Goal != nil {
		st.Goal = r.Command.Goal.String()
	}
	return st, nil
}

// Processes lists every registered process as the last tick saw it.
func (a *Agent) Processes() control.Report { return a.mgr.LastReport() }

// ETA is measured in world ticks and converted with the server tick rate.
type ETA struct {
	SegmentTicks   int     `json:"segment_ticks"`
	GoalTicks      int     `json:"goal_ticks"`
	SegmentSeconds float64 `json:"segment_seconds"`
	GoalSeconds    float64 `json:"goal_seconds"`
}

func (a *Agent) ETA() (ETA, error) {
	if a.mgr.MostRecent() == nil {
		return ETA{}, ErrNoProcessInControl
	}
	total, ok := a.exec.GoalTicks()
	if !ok {
		return ETA{}, ErrNoETA
	}
	seg, ok := a.exec.SegmentTicks()
	if !ok {
		seg = total
	}
	rate := float64(a.view.TickRate())
	return ETA{
		SegmentTicks:   seg,
		GoalTicks:      total,
		SegmentSeconds: float64(seg) / rate,
		GoalSeconds:    float64(total) / rate,
	}, nil
}
