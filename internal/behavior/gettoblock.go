package behavior

import (
	"strings"

	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
)

// GetToBlock walks next to the nearest block of any of the given types.
// Blocks it failed to reach are skipped for the rest of the run.
type GetToBlock struct {
	base
	world     World
	scanLimit int

	names     []string
	target    *goal.Pos
	blacklist map[goal.Pos]bool
	idle      int
}

func NewGetToBlock(log zerolog.Logger, world World, scanLimit int) *GetToBlock {
	return &GetToBlock{base: base{log: componentLog(log, "get_to_block")}, world: world, scanLimit: scanLimit}
}

func (g *GetToBlock) Start(names []string) error {
	if len(names) == 0 {
		return ErrNoBlocks
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.names = append([]string(nil), names...)
	g.target, g.blacklist, g.idle = nil, map[goal.Pos]bool{}, 0
	g.running = true
	g.log.Info().Strs("blocks", names).Msg("looking for block")
	return nil
}

func (g *GetToBlock) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running, g.driving, g.target = false, false, nil
}

// BlacklistTarget skips the block currently walked to. The next tick picks
// the next nearest candidate.
func (g *GetToBlock) BlacklistTarget() (goal.Pos, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running || g.target == nil {
		return goal.Pos{}, false
	}
	p := *g.target
	g.blacklist[p] = true
	g.target = nil
	g.log.Info().Str("pos", p.String()).Msg("blacklisted")
	return p, true
}

func (g *GetToBlock) DisplayName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return "Get To Block " + strings.Join(g.names, ",")
}

func (g *GetToBlock) OnTick(calcFailed, _ bool) control.Command {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return control.NoOp()
	}
	if g.failed(calcFailed) && g.target != nil {
		g.log.Debug().Str("pos", g.target.String()).Msg("unreachable, skipping")
		g.blacklist[*g.target] = true
		g.target = nil
	}
	cands := pickCandidates(g.world, g.names, g.scanLimit, g.blacklist)
	if len(cands) == 0 {
		g.idle++
		if g.idle > idleGiveUp {
			g.log.Info().Strs("blocks", g.names).Msg("no reachable block in view, giving up")
			g.running = false
		}
		return g.issue(control.NoOp())
	}
	g.idle = 0
	if self, ok := g.world.Self(); ok {
		for _, c := range cands {
			if (goal.Block{Pos: c}).IsInGoal(self) {
				g.log.Info().Str("pos", c.String()).Msg("arrived at block")
				g.running, g.target = false, nil
				return g.issue(control.NoOp())
			}
		}
	}
	t := cands[0]
	g.target = &t
	return g.issue(control.Travel(goal.Block{Pos: t}))
}

func pickCandidates(w World, names []string, limit int, skip map[goal.Pos]bool) []goal.Pos {
	var out []goal.Pos
	for _, p := range w.FindBlocks(names, limit) {
		if !skip[p] {
			out = append(out, p)
		}
	}
	return out
}
