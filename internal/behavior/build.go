package behavior

import (
	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
)

// Build walks to a blueprint anchor and has the server place the blueprint.
// It stops when the build task ends either way.
type Build struct {
	base
	goal goal.Build
}

func NewBuild(log zerolog.Logger) *Build {
	return &Build{base: base{log: componentLog(log, "build")}}
}

func (b *Build) Start(g goal.Build) error {
	if g.BlueprintID == "" {
		return ErrNoGoal
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.goal, b.running = g, true
	b.log.Info().Str("blueprint", g.BlueprintID).Str("anchor", g.Anchor.String()).Msg("building")
	return nil
}

func (b *Build) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running, b.driving = false, false
}

func (b *Build) DisplayName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return "Build " + b.goal.BlueprintID
}

func (b *Build) OnTick(calcFailed, _ bool) control.Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return control.NoOp()
	}
	if b.failed(calcFailed) {
		b.log.Warn().Str("blueprint", b.goal.BlueprintID).Msg("cannot reach build site, giving up")
		b.running = false
		return b.issue(control.Cancel())
	}
	return b.issue(control.TravelAndHold(b.goal))
}

func (b *Build) WorkFinished(w goal.Work, ok bool, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running || w.Kind != goal.WorkBuild || w.BlueprintID != b.goal.BlueprintID || w.Anchor != b.goal.Anchor {
		return
	}
	if ok {
		b.log.Info().Str("blueprint", w.BlueprintID).Msg("build finished")
	} else {
		b.log.Warn().Str("blueprint", w.BlueprintID).Str("code", code).Msg("build failed")
	}
	b.running, b.driving = false, false
}
