package behavior

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/protocol"
)

// Mine breaks blocks of the given types until quantity have been mined, or
// forever when quantity is zero.
type Mine struct {
	base
	world     World
	scanLimit int

	names     []string
	quantity  int
	mined     int
	target    *goal.Pos
	blacklist map[goal.Pos]bool
	idle      int
}

func NewMine(log zerolog.Logger, world World, scanLimit int) *Mine {
	return &Mine{base: base{log: componentLog(log, "mine")}, world: world, scanLimit: scanLimit}
}

func (m *Mine) Start(quantity int, names []string) error {
	if len(names) == 0 {
		return ErrNoBlocks
	}
	if quantity < 0 {
		return fmt.Errorf("behavior: negative mine quantity %d", quantity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append([]string(nil), names...)
	m.quantity, m.mined = quantity, 0
	m.target, m.blacklist, m.idle = nil, map[goal.Pos]bool{}, 0
	m.running = true
	m.log.Info().Strs("blocks", names).Int("quantity", quantity).Msg("mining")
	return nil
}

func (m *Mine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running, m.driving, m.target = false, false, nil
}

// Mined is the number of blocks broken in the current run.
func (m *Mine) Mined() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mined
}

func (m *Mine) DisplayName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return "Mine " + strings.Join(m.names, ",")
}

func (m *Mine) OnTick(calcFailed, _ bool) control.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return control.NoOp()
	}
	if m.quantity > 0 && m.mined >= m.quantity {
		m.log.Info().Int("mined", m.mined).Msg("quota reached")
		m.running, m.target = false, nil
		return m.issue(control.NoOp())
	}
	if m.failed(calcFailed) && m.target != nil {
		m.blacklist[*m.target] = true
		m.target = nil
	}
	if m.target != nil {
		if name, ok := m.world.BlockAt(*m.target); ok && !containsName(m.names, name) {
			m.target = nil
		}
	}
	if m.target == nil {
		cands := pickCandidates(m.world, m.names, m.scanLimit, m.blacklist)
		if len(cands) == 0 {
			m.idle++
			if m.idle > idleGiveUp {
				m.log.Info().Strs("blocks", m.names).Msg("nothing left to mine in view")
				m.running = false
			}
			return m.issue(control.NoOp())
		}
		t := cands[0]
		m.target = &t
	}
	m.idle = 0
	return m.issue(control.TravelAndHold(goal.Mine{Pos: *m.target}))
}

func (m *Mine) WorkFinished(w goal.Work, ok bool, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.Kind != goal.WorkMine || m.target == nil || w.BlockPos != *m.target {
		return
	}
	if ok {
		m.mined++
		m.log.Debug().Str("pos", w.BlockPos.String()).Int("mined", m.mined).Msg("block mined")
	} else if protocol.Retryable(code) {
		m.log.Debug().Str("pos", w.BlockPos.String()).Str("code", code).Msg("mine failed, retrying")
	} else {
		m.log.Debug().Str("pos", w.BlockPos.String()).Str("code", code).Msg("mine failed, skipping")
		m.blacklist[w.BlockPos] = true
	}
	m.target = nil
}
