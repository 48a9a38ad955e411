// Package worldview keeps the agent's picture of the world as reported by
// OBS frames: its own position, the voxel window around it, nearby entities
// and the catalogs needed to name blocks.
package worldview

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/protocol"
)

var ErrNoBaseline = errors.New("worldview: delta voxels without a baseline window")

// Blueprint is the part of a blueprint catalog entry the agent needs.
type Blueprint struct {
	ID   string    `json:"id"`
	AABB [2][3]int `json:"aabb"`
}

// Span is the larger horizontal extent of the blueprint's bounding box.
func (b Blueprint) Span() int {
	dx := b.AABB[1][0] - b.AABB[0][0] + 1
	dz := b.AABB[1][2] - b.AABB[0][2] + 1
	if dz > dx {
		return dz
	}
	return dx
}

// View is safe for concurrent use. The host loop writes it; control handlers
// and behaviors read it.
type View struct {
	mu sync.RWMutex

	agentID  string
	params   protocol.WorldParams
	tick     uint64
	self     goal.Pos
	hasSelf  bool
	palette  []string
	byName   map[string]uint16
	bps      map[string]Blueprint
	center   goal.Pos
	radius   int
	voxels   []uint16
	entities []protocol.EntityObs
	tasks    []protocol.TaskObs
}

func New() *View {
	return &View{byName: map[string]uint16{}, bps: map[string]Blueprint{}}
}

// Welcome records the session parameters and drops the voxel window, since
// the server restarts delta encoding on every new session.
func (v *View) Welcome(w protocol.WelcomeMsg) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.agentID = w.AgentID
	v.params = w.WorldParams
	v.voxels = nil
}

// ApplyCatalog consumes the catalogs the agent understands and ignores the rest.
func (v *View) ApplyCatalog(c protocol.CatalogMsg) error {
	switch c.Name {
	case protocol.CatalogBlockPalette:
		var names []string
		if err := json.Unmarshal(c.Data, &names); err != nil {
			return fmt.Errorf("block palette: %w", err)
		}
		v.SetPalette(names)
	case protocol.CatalogBlueprints:
		var defs []Blueprint
		if err := json.Unmarshal(c.Data, &defs); err != nil {
			return fmt.Errorf("blueprints: %w", err)
		}
		v.mu.Lock()
		for _, d := range defs {
			v.bps[d.ID] = d
		}
		v.mu.Unlock()
	}
	return nil
}

func (v *View) SetPalette(names []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.palette = append([]string(nil), names...)
	v.byName = make(map[string]uint16, len(names))
	for i, n := range names {
		v.byName[n] = uint16(i)
	}
}

// Apply folds one observation into the view. Position, entities and tasks
// are always taken; a voxel frame that fails to decode leaves the previous
// window in place and is reported.
func (v *View) Apply(obs protocol.ObsMsg) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tick = obs.Tick
	if obs.AgentID != "" {
		v.agentID = obs.AgentID
	}
	v.self = goal.FromArray(obs.Self.Pos)
	v.hasSelf = true
	v.entities = append(v.entities[:0], obs.Entities...)
	v.tasks = append(v.tasks[:0], obs.Tasks...)
	return v.applyVoxelsLocked(obs.Voxels)
}

func (v *View) applyVoxelsLocked(vox protocol.VoxelsObs) error {
	if vox.Encoding == "" {
		return nil
	}
	r := vox.Radius
	if r < 0 {
		return fmt.Errorf("voxels: negative radius %d", r)
	}
	dim := 2*r + 1
	total := dim * dim * dim
	switch vox.Encoding {
	case protocol.EncodingRLE:
		ids, err := DecodeRLE(vox.Data, total)
		if err != nil {
			return err
		}
		v.voxels = ids
	case protocol.EncodingDelta:
		if v.voxels == nil || v.radius != r || len(v.voxels) != total {
			return ErrNoBaseline
		}
		for _, op := range vox.Ops {
			dx, dy, dz := op.D[0], op.D[1], op.D[2]
			if abs(dx) > r || abs(dy) > r || abs(dz) > r {
				return fmt.Errorf("voxels: delta op %v outside radius %d", op.D, r)
			}
			v.voxels[((dy+r)*dim+(dz+r))*dim+(dx+r)] = op.B
		}
	default:
		return fmt.Errorf("voxels: unknown encoding %q", vox.Encoding)
	}
	v.center = goal.FromArray(vox.Center)
	v.radius = r
	return nil
}

func (v *View) Tick() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tick
}

func (v *View) AgentID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.agentID
}

// Self returns the agent position from the latest observation.
func (v *View) Self() (goal.Pos, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.self, v.hasSelf
}

func (v *View) Params() protocol.WorldParams {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.params
}

// TickRate falls back to 5Hz when the server has not announced one.
func (v *View) TickRate() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.params.TickRateHz <= 0 {
		return 5
	}
	return v.params.TickRateHz
}

// BlockAt names the block at p when p lies inside the current window.
func (v *View) BlockAt(p goal.Pos) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.idAtLocked(p)
	if !ok || int(id) >= len(v.palette) {
		return "", false
	}
	return v.palette[id], true
}

func (v *View) idAtLocked(p goal.Pos) (uint16, bool) {
	if v.voxels == nil {
		return 0, false
	}
	r := v.radius
	dx, dy, dz := p.X-v.center.X, p.Y-v.center.Y, p.Z-v.center.Z
	if abs(dx) > r || abs(dy) > r || abs(dz) > r {
		return 0, false
	}
	dim := 2*r + 1
	return v.voxels[((dy+r)*dim+(dz+r))*dim+(dx+r)], true
}

// FindBlocks returns up to max positions holding any of the named blocks,
// nearest to the agent first. Unknown names are ignored.
func (v *View) FindBlocks(names []string, max int) []goal.Pos {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.voxels == nil || max <= 0 {
		return nil
	}
	want := map[uint16]bool{}
	for _, n := range names {
		if id, ok := v.byName[n]; ok {
			want[id] = true
		}
	}
	if len(want) == 0 {
		return nil
	}
	r := v.radius
	var out []goal.Pos
	i := 0
	for dy := -r; dy <= r; dy++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if want[v.voxels[i]] {
					out = append(out, v.center.Add(goal.Pos{X: dx, Y: dy, Z: dz}))
				}
				i++
			}
		}
	}
	self := v.self
	sort.SliceStable(out, func(i, j int) bool {
		return goal.Manhattan(self, out[i]) < goal.Manhattan(self, out[j])
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// HasPalette reports whether a block palette has been received.
func (v *View) HasPalette() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.palette) > 0
}

// KnownBlock reports whether name is in the block palette.
func (v *View) KnownBlock(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.byName[name]
	return ok
}

func (v *View) Blueprint(id string) (Blueprint, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	b, ok := v.bps[id]
	return b, ok
}

func (v *View) Entity(id string) (protocol.EntityObs, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, e := range v.entities {
		if e.ID == id {
			return e, true
		}
	}
	return protocol.EntityObs{}, false
}

// EntitiesOfType lists visible entities of the given type, nearest first.
func (v *View) EntitiesOfType(typ string) []protocol.EntityObs {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []protocol.EntityObs
	for _, e := range v.entities {
		if e.Type == typ && e.ID != v.agentID {
			out = append(out, e)
		}
	}
	self := v.self
	sort.SliceStable(out, func(i, j int) bool {
		return goal.DistXZ(self, goal.FromArray(out[i].Pos)) < goal.DistXZ(self, goal.FromArray(out[j].Pos))
	})
	return out
}

// Tasks returns the server's view of our running tasks.
func (v *View) Tasks() []protocol.TaskObs {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]protocol.TaskObs(nil), v.tasks...)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
