package agent

import (
	"context"
	"errors"

	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/waypoint"
)

// SaveWaypoint stores a waypoint at pos, or at the agent's position when pos
// is nil. An empty tag means USER.
func (a *Agent) SaveWaypoint(ctx context.Context, name string, tag waypoint.Tag, pos *goal.Pos) (waypoint.Waypoint, error) {
	if a.waypoints == nil {
		return waypoint.Waypoint{}, ErrNoWaypointStore
	}
	w := waypoint.Waypoint{Name: name, Tag: tag}
	if pos != nil {
		w.Pos = *pos
	} else {
		self, ok := a.view.Self()
		if !ok {
			return waypoint.Waypoint{}, ErrNoPosition
		}
		w.Pos = self
	}
	saved, err := a.waypoints.Add(ctx, w)
	if err != nil {
		return waypoint.Waypoint{}, err
	}
	a.log.Info().Str("waypoint", saved.String()).Msg("waypoint saved")
	return saved, nil
}

func (a *Agent) ListWaypoints(ctx context.Context, tag waypoint.Tag) ([]waypoint.Waypoint, error) {
	if a.waypoints == nil {
		return nil, ErrNoWaypointStore
	}
	return a.waypoints.List(ctx, tag)
}

// Waypoint resolves an id, a tag or a name, newest match first.
func (a *Agent) Waypoint(ctx context.Context, ref string) (waypoint.Waypoint, error) {
	if a.waypoints == nil {
		return waypoint.Waypoint{}, ErrNoWaypointStore
	}
	w, err := a.waypoints.Get(ctx, ref)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, waypoint.ErrNotFound) {
		return waypoint.Waypoint{}, err
	}
	ws, err := a.waypoints.Find(ctx, ref)
	if err != nil {
		return waypoint.Waypoint{}, err
	}
	return ws[0], nil
}

func (a *Agent) DeleteWaypoint(ctx context.Context, id string) error {
	if a.waypoints == nil {
		return ErrNoWaypointStore
	}
	return a.waypoints.Delete(ctx, id)
}

func (a *Agent) ClearWaypoints(ctx context.Context, tag waypoint.Tag) (int, error) {
	if a.waypoints == nil {
		return 0, ErrNoWaypointStore
	}
	return a.waypoints.Clear(ctx, tag)
}

func (a *Agent) RestoreWaypoints(ctx context.Context, n int) ([]waypoint.Waypoint, error) {
	if a.waypoints == nil {
		return nil, ErrNoWaypointStore
	}
	return a.waypoints.Restore(ctx, n)
}

// GotoWaypoint travels to the waypoint ref resolves to.
func (a *Agent) GotoWaypoint(ctx context.Context, ref string) (waypoint.Waypoint, error) {
	w, err := a.Waypoint(ctx, ref)
	if err != nil {
		return waypoint.Waypoint{}, err
	}
	return w, a.Goto(goal.Block{Pos: w.Pos})
}

// GoalWaypoint sets the waypoint as goal without moving.
func (a *Agent) GoalWaypoint(ctx context.Context, ref string) (waypoint.Waypoint, error) {
	w, err := a.Waypoint(ctx, ref)
	if err != nil {
		return waypoint.Waypoint{}, err
	}
	a.SetGoal(goal.Block{Pos: w.Pos})
	return w, nil
}

func (a *Agent) SetHome(ctx context.Context) (waypoint.Waypoint, error) {
	return a.SaveWaypoint(ctx, "home", waypoint.TagHome, nil)
}

func (a *Agent) Home(ctx context.Context) (waypoint.Waypoint, error) {
	return a.GotoWaypoint(ctx, string(waypoint.TagHome))
}
