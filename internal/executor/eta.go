package executor

import (
	"math"

	"voxelpilot.ai/internal/goal"
)

var inf = math.Inf(1)

// SegmentTicks is the server's estimate for the movement task in flight.
func (e *Executor) SegmentTicks() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.segmentTicks, e.hasSegment
}

// GoalTicks estimates the ticks left to reach the goal: the running segment
// plus the walk from its end to the goal, at one block per tick.
func (e *Executor) GoalTicks() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.goal == nil {
		return 0, false
	}
	if e.goal.IsInGoal(e.self) {
		return 0, true
	}
	from, ticks := e.self, 0
	if e.move != nil && e.hasSegment {
		from, ticks = e.move.target, e.segmentTicks
	}
	target, tol := e.goal.Target(from)
	rest := goal.DistXZ(from, target) - goal.MoveTolerance(tol)
	if rest > 0 {
		ticks += rest
	}
	return ticks, true
}
