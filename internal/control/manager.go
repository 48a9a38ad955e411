package control

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Result is one tick's arbitration outcome. It is replaced as a whole after
// every tick and never mutated in place.
type Result struct {
	Tick      uint64
	Process   Process
	Command   Command
	Name      string
	Priority  float64
	Temporary bool
}

// EntryState says what happened to a registered process during a tick.
type EntryState string

const (
	StateInControl EntryState = "in-control"
	StateNoOp      EntryState = "no-op"
	StateNotAsked  EntryState = "not-asked"
	StateInactive  EntryState = "inactive"
	StateRemoved   EntryState = "removed"
)

// ProcessInfo describes one registered process as seen by the last tick.
type ProcessInfo struct {
	Name      string     `json:"name"`
	Priority  float64    `json:"priority"`
	Active    bool       `json:"active"`
	Temporary bool       `json:"temporary"`
	State     EntryState `json:"state"`
}

// Report lists every process visited by a tick, in registration order.
// MarshalJSON writes a priority that JSON cannot carry as null.
func (pi ProcessInfo) MarshalJSON() ([]byte, error) {
	type plain ProcessInfo
	return json.Marshal(struct {
		plain
		Priority *float64 `json:"priority"`
	}{plain: plain(pi), Priority: FinitePriority(pi.Priority)})
}

// FinitePriority returns nil for NaN and infinite priorities.
func FinitePriority(p float64) *float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return nil
	}
	return &p
}

type Report struct {
	Tick    uint64        `json:"tick"`
	Entries []ProcessInfo `json:"entries"`
}

type entry struct {
	proc Process
	seq  uint64
}

type candidate struct {
	e        *entry
	info     int
	priority float64
}

// Manager owns the registered process set and runs arbitration. Tick must be
// driven from a single goroutine; registration and the read accessors are safe
// from any goroutine.
type Manager struct {
	log zerolog.Logger

	mu            sync.Mutex
	entries       []*entry
	index         map[Process]*entry
	nextSeq       uint64
	ticking       bool
	pendingRemove []Process
	inControl     Process

	running atomic.Bool
	ticks   atomic.Uint64
	recent  atomic.Pointer[Result]
	report  atomic.Pointer[Report]
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:   log.With().Str("component", "control").Logger(),
		index: map[Process]*entry{},
	}
}

// Register adds p to arbitration. It takes part from the next tick on; a
// registration made while a tick is running never joins that tick.
func (m *Manager) Register(p Process) error {
	if p == nil {
		return ErrNilProcess
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[p]; ok {
		m.log.Warn().Str("process", p.DisplayName()).Msg("duplicate registration rejected")
		return fmt.Errorf("%w: %s", ErrDuplicateProcess, p.DisplayName())
	}
	e := &entry{proc: p, seq: m.nextSeq}
	m.nextSeq++
	m.entries = append(m.entries, e)
	m.index[p] = e
	m.log.Debug().Str("process", p.DisplayName()).Msg("registered")
	return nil
}

// Unregister removes p and fires its OnLostControl. During a tick the removal
// is queued until the tick's loop is done. It reports whether p was registered.
func (m *Manager) Unregister(p Process) bool {
	if p == nil {
		return false
	}
	m.mu.Lock()
	if _, ok := m.index[p]; !ok {
		m.mu.Unlock()
		return false
	}
	if m.ticking {
		for _, q := range m.pendingRemove {
			if q == p {
				m.mu.Unlock()
				return true
			}
		}
		m.pendingRemove = append(m.pendingRemove, p)
		m.mu.Unlock()
		return true
	}
	m.removeLocked(p)
	m.mu.Unlock()

	m.log.Debug().Str("process", p.DisplayName()).Msg("unregistered")
	p.OnLostControl()
	return true
}

// IsRegistered reports whether p currently takes part in arbitration.
func (m *Manager) IsRegistered(p Process) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.index[p]
	return ok
}

// Len is the number of registered processes.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) removeLocked(p Process) {
	e, ok := m.index[p]
	if !ok {
		return
	}
	delete(m.index, p)
	for i, x := range m.entries {
		if x == e {
			m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			break
		}
	}
	if m.inControl == p {
		m.inControl = nil
	}
}

// Tick runs one arbitration pass and returns the winning command, or false on
// an idle tick. calcFailed and safeToCancel come from the executor and are
// handed unchanged to every process asked to decide.
func (m *Manager) Tick(calcFailed, safeToCancel bool) (Command, bool) {
	if !m.running.CompareAndSwap(false, true) {
		panic("control: Tick called concurrently")
	}
	defer m.running.Store(false)

	m.mu.Lock()
	snapshot := make([]*entry, len(m.entries))
	copy(snapshot, m.entries)
	prev := m.inControl
	m.ticking = true
	m.mu.Unlock()

	tick := m.ticks.Add(1)
	infos := make([]ProcessInfo, len(snapshot))
	active := make([]candidate, 0, len(snapshot))
	var expired []Process

	for i, e := range snapshot {
		if e == nil || e.proc == nil {
			panic(fmt.Sprintf("control: corrupted registration snapshot at %d", i))
		}
		p := e.proc
		infos[i] = ProcessInfo{Name: p.DisplayName(), Temporary: p.Temporary()}
		if !p.Active() {
			infos[i].State = StateInactive
			if infos[i].Temporary {
				expired = append(expired, p)
			}
			continue
		}
		prio := p.Priority()
		if math.IsNaN(prio) {
			prio = math.Inf(-1)
		}
		infos[i].Active = true
		infos[i].Priority = prio
		infos[i].State = StateNotAsked
		active = append(active, candidate{e: e, info: i, priority: prio})
	}

	// Stable on registration order, so the earliest registration wins ties.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].priority > active[j].priority
	})

	var (
		winner     Process
		winnerInfo ProcessInfo
		cmd        Command
	)
	for _, c := range active {
		out := c.e.proc.OnTick(calcFailed, safeToCancel)
		if out.IsNoOp() {
			infos[c.info].State = StateNoOp
			continue
		}
		infos[c.info].State = StateInControl
		winner, winnerInfo, cmd = c.e.proc, infos[c.info], out
		break
	}

	notified := map[Process]bool{}
	if prev != nil && prev != winner {
		m.log.Debug().Str("process", prev.DisplayName()).Msg("lost control")
		prev.OnLostControl()
		notified[prev] = true
	}

	m.mu.Lock()
	m.ticking = false
	queued := m.pendingRemove
	m.pendingRemove = nil
	var removed []Process
	for _, p := range append(expired, queued...) {
		if _, ok := m.index[p]; !ok {
			continue
		}
		m.removeLocked(p)
		removed = append(removed, p)
	}
	m.inControl = winner
	if winner != nil {
		if _, ok := m.index[winner]; !ok {
			m.inControl = nil
		}
	}
	m.mu.Unlock()

	if winner != nil {
		if winner != prev {
			m.log.Debug().Str("process", winnerInfo.Name).Str("command", cmd.String()).Msg("took control")
		}
		m.recent.Store(&Result{
			Tick:      tick,
			Process:   winner,
			Command:   cmd,
			Name:      winnerInfo.Name,
			Priority:  winnerInfo.Priority,
			Temporary: winnerInfo.Temporary,
		})
	} else {
		m.recent.Store(nil)
	}

	for _, p := range removed {
		for i, e := range snapshot {
			if e.proc == p {
				infos[i].State = StateRemoved
			}
		}
		m.log.Debug().Str("process", p.DisplayName()).Msg("removed")
		if notified[p] {
			continue
		}
		notified[p] = true
		p.OnLostControl()
	}
	m.report.Store(&Report{Tick: tick, Entries: infos})

	if winner == nil {
		return Command{}, false
	}
	return cmd, true
}

// MostRecent returns the last tick's result, or nil after an idle tick.
func (m *Manager) MostRecent() *Result {
	return m.recent.Load()
}

// MostRecentInControl returns the process that won the last tick.
func (m *Manager) MostRecentInControl() (Process, bool) {
	r := m.recent.Load()
	if r == nil {
		return nil, false
	}
	return r.Process, true
}

// MostRecentCommand returns the command that won the last tick.
func (m *Manager) MostRecentCommand() (Command, bool) {
	r := m.recent.Load()
	if r == nil {
		return Command{}, false
	}
	return r.Command, true
}

// LastReport returns what the last tick saw of every registered process.
func (m *Manager) LastReport() Report {
	r := m.report.Load()
	if r == nil {
		return Report{}
	}
	return *r
}

// Ticks is the number of arbitration passes run so far.
func (m *Manager) Ticks() uint64 { return m.ticks.Load() }
