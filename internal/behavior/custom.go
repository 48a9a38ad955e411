package behavior

import (
	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
)

// CustomGoal travels to a user supplied goal and stops on arrival. A failed
// path calculation makes it give up.
type CustomGoal struct {
	base
	world      World
	goal       goal.Goal
	travelling bool
}

func NewCustomGoal(log zerolog.Logger, world World) *CustomGoal {
	return &CustomGoal{base: base{log: componentLog(log, "custom_goal")}, world: world}
}

// SetGoal stores g without moving.
func (c *CustomGoal) SetGoal(g goal.Goal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goal = g
}

func (c *CustomGoal) Goal() goal.Goal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goal
}

// Path starts travelling to the stored goal.
func (c *CustomGoal) Path() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.goal == nil {
		return ErrNoGoal
	}
	c.travelling, c.running = true, true
	c.log.Info().Str("goal", c.goal.String()).Msg("travelling")
	return nil
}

func (c *CustomGoal) SetGoalAndPath(g goal.Goal) error {
	c.SetGoal(g)
	return c.Path()
}

func (c *CustomGoal) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.travelling, c.running, c.driving = false, false, false
}

func (c *CustomGoal) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.goal == nil {
		return "Custom Goal"
	}
	return "Custom Goal " + c.goal.String()
}

func (c *CustomGoal) OnTick(calcFailed, _ bool) control.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.travelling || c.goal == nil {
		return control.NoOp()
	}
	if c.failed(calcFailed) {
		c.log.Warn().Str("goal", c.goal.String()).Msg("path failed, giving up")
		c.travelling, c.running = false, false
		return c.issue(control.Cancel())
	}
	if self, ok := c.world.Self(); ok && c.goal.IsInGoal(self) {
		c.log.Info().Str("goal", c.goal.String()).Msg("arrived")
		c.travelling, c.running = false, false
		return c.issue(control.NoOp())
	}
	return c.issue(control.Travel(c.goal))
}
