package agent

import (
	"errors"
	"fmt"

	"voxelpilot.ai/internal/goal"
)

var (
	ErrUnknownBlock  = errors.New("agent: unknown block")
	ErrEntityNotSeen = errors.New("agent: entity not in view")
	ErrBadRotation   = errors.New("agent: rotation must be 0, 90, 180 or 270")
	ErrBadAnchor     = errors.New("agent: blueprint anchor must be at y=0")
	ErrNoBlockTarget = errors.New("agent: not walking to a block")
)

// SetGoal stores a goal without moving.
func (a *Agent) SetGoal(g goal.Goal) { a.custom.SetGoal(g) }

func (a *Agent) Goal() goal.Goal { return a.custom.Goal() }

// Path travels to the goal stored with SetGoal.
func (a *Agent) Path() error {
	a.stopOthers(a.custom)
	return a.custom.Path()
}

// Goto travels to g.
func (a *Agent) Goto(g goal.Goal) error {
	a.stopOthers(a.custom)
	return a.custom.SetGoalAndPath(g)
}

// GotoPos travels to a coordinate, within the configured tolerance.
func (a *Agent) GotoPos(p goal.Pos) error {
	if a.cfg.MoveTolerance > 1 {
		return a.Goto(goal.Near{Pos: p, Radius: a.cfg.MoveTolerance})
	}
	return a.Goto(goal.Block{Pos: p})
}

// GotoBlock walks to the nearest block of one of the named types.
func (a *Agent) GotoBlock(names []string) error {
	if err := a.checkBlocks(names); err != nil {
		return err
	}
	a.stopOthers(a.getTo)
	return a.getTo.Start(names)
}

// Blacklist makes get-to-block give up on its current target.
func (a *Agent) Blacklist() (goal.Pos, error) {
	p, ok := a.getTo.BlacklistTarget()
	if !ok {
		return goal.Pos{}, ErrNoBlockTarget
	}
	return p, nil
}

// FindBlocks lists visible blocks of the named types, nearest first.
func (a *Agent) FindBlocks(names []string) ([]goal.Pos, error) {
	if err := a.checkBlocks(names); err != nil {
		return nil, err
	}
	return a.view.FindBlocks(names, a.cfg.MineScanLimit), nil
}

// Come travels to where an entity currently stands.
func (a *Agent) Come(entityID string) error {
	e, ok := a.view.Entity(entityID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotSeen, entityID)
	}
	return a.Goto(goal.Block{Pos: goal.FromArray(e.Pos)})
}

// Surface climbs to the top of the current column.
func (a *Agent) Surface() error {
	self, ok := a.view.Self()
	if !ok {
		return ErrNoPosition
	}
	top := a.view.Params().Height - 1
	if top < 0 {
		top = 0
	}
	return a.Goto(goal.Block{Pos: goal.Pos{X: self.X, Y: top, Z: self.Z}})
}

func (a *Agent) Mine(quantity int, names []string) error {
	if err := a.checkBlocks(names); err != nil {
		return err
	}
	a.stopOthers(a.mine)
	return a.mine.Start(quantity, names)
}

func (a *Agent) Follow(ids []string) error {
	a.stopOthers(a.follow)
	return a.follow.FollowEntities(ids)
}

func (a *Agent) FollowType(typ string) error {
	a.stopOthers(a.follow)
	return a.follow.FollowType(typ)
}

// Explore spirals out from x,z.
func (a *Agent) Explore(x, z int) {
	a.stopOthers(a.explore)
	a.explore.Start(x, z)
}

// ExploreHere spirals out from the current column.
func (a *Agent) ExploreHere() error {
	self, ok := a.view.Self()
	if !ok {
		return ErrNoPosition
	}
	a.Explore(self.X, self.Z)
	return nil
}

// Build places a blueprint at anchor. The walk radius follows the blueprint
// size when the catalog knows it.
func (a *Agent) Build(blueprintID string, anchor goal.Pos, rotation int) error {
	switch rotation {
	case 0, 90, 180, 270:
	default:
		return ErrBadRotation
	}
	if anchor.Y != 0 {
		return ErrBadAnchor
	}
	radius := 2
	if bp, ok := a.view.Blueprint(blueprintID); ok {
		radius = bp.Span()/2 + 1
	}
	a.stopOthers(a.build)
	return a.build.Start(goal.Build{BlueprintID: blueprintID, Anchor: anchor, Rotation: rotation, Radius: radius})
}

// checkBlocks rejects names missing from the palette once one is known.
func (a *Agent) checkBlocks(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: no block names", ErrUnknownBlock)
	}
	if !a.view.HasPalette() {
		return nil
	}
	for _, n := range names {
		if !a.view.KnownBlock(n) {
			return fmt.Errorf("%w: %s", ErrUnknownBlock, n)
		}
	}
	return nil
}
