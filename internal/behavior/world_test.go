package behavior

import (
	"sort"
	"sync"

	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/protocol"
)

type fakeWorld struct {
	mu       sync.Mutex
	self     goal.Pos
	blocks   map[goal.Pos]string
	entities []protocol.EntityObs
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{blocks: map[goal.Pos]string{}}
}

func (w *fakeWorld) moveTo(p goal.Pos) {
	w.mu.Lock()
	w.self = p
	w.mu.Unlock()
}

func (w *fakeWorld) set(p goal.Pos, name string) {
	w.mu.Lock()
	w.blocks[p] = name
	w.mu.Unlock()
}

func (w *fakeWorld) Self() (goal.Pos, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.self, true
}

func (w *fakeWorld) BlockAt(p goal.Pos) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.blocks[p]
	if !ok {
		return "AIR", true
	}
	return n, true
}

func (w *fakeWorld) FindBlocks(names []string, max int) []goal.Pos {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []goal.Pos
	for p, n := range w.blocks {
		if containsName(names, n) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := goal.Manhattan(w.self, out[i]), goal.Manhattan(w.self, out[j])
		if di != dj {
			return di < dj
		}
		return out[i].String() < out[j].String()
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func (w *fakeWorld) Entity(id string) (protocol.EntityObs, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range w.entities {
		if e.ID == id {
			return e, true
		}
	}
	return protocol.EntityObs{}, false
}

func (w *fakeWorld) EntitiesOfType(typ string) []protocol.EntityObs {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []protocol.EntityObs
	for _, e := range w.entities {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
