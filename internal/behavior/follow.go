package behavior

import (
	"strings"

	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
)

// Follow keeps the agent within distance of a set of entities, chosen either
// by id or by entity type. It stays active while the targets are out of view.
type Follow struct {
	base
	world    World
	distance int

	ids []string
	typ string
}

func NewFollow(log zerolog.Logger, world World, distance int) *Follow {
	return &Follow{base: base{log: componentLog(log, "follow")}, world: world, distance: distance}
}

func (f *Follow) FollowEntities(ids []string) error {
	if len(ids) == 0 {
		return ErrNoTargets
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids, f.typ, f.running = append([]string(nil), ids...), "", true
	f.log.Info().Strs("entities", ids).Msg("following")
	return nil
}

func (f *Follow) FollowType(typ string) error {
	if typ == "" {
		return ErrNoTargets
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids, f.typ, f.running = nil, typ, true
	f.log.Info().Str("type", typ).Msg("following")
	return nil
}

func (f *Follow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running, f.driving = false, false
}

func (f *Follow) DisplayName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.typ != "" {
		return "Follow " + f.typ
	}
	return "Follow " + strings.Join(f.ids, ",")
}

func (f *Follow) OnTick(bool, bool) control.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return control.NoOp()
	}
	var g goal.Composite
	if f.typ != "" {
		for _, e := range f.world.EntitiesOfType(f.typ) {
			g = append(g, goal.Near{Pos: goal.FromArray(e.Pos), Radius: f.distance})
		}
	} else {
		for _, id := range f.ids {
			if e, ok := f.world.Entity(id); ok {
				g = append(g, goal.Near{Pos: goal.FromArray(e.Pos), Radius: f.distance})
			}
		}
	}
	if len(g) == 0 {
		return f.issue(control.NoOp())
	}
	if len(g) == 1 {
		return f.issue(control.Travel(g[0]))
	}
	return f.issue(control.Travel(g))
}
