package worldview

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/protocol"
)

const (
	air   = 0
	stone = 1
	ore   = 2
)

// window builds a radius-1 window of AIR with the given blocks set,
// keyed by offset from the center.
func window(set map[[3]int]uint16) []uint16 {
	ids := make([]uint16, 27)
	for d, b := range set {
		ids[((d[1]+1)*3+(d[2]+1))*3+(d[0]+1)] = b
	}
	return ids
}

func obsWith(pos [3]int, vox protocol.VoxelsObs) protocol.ObsMsg {
	return protocol.ObsMsg{Type: protocol.TypeObs, Tick: 7, AgentID: "A1", Self: protocol.SelfObs{Pos: pos}, Voxels: vox}
}

func newView(t *testing.T) *View {
	t.Helper()
	v := New()
	data, _ := json.Marshal([]string{"AIR", "STONE", "IRON_ORE"})
	require.NoError(t, v.ApplyCatalog(protocol.CatalogMsg{Name: protocol.CatalogBlockPalette, Data: data}))
	return v
}

func TestApplyRLEAndLookup(t *testing.T) {
	v := newView(t)
	ids := window(map[[3]int]uint16{{1, 0, 0}: ore, {0, -1, 0}: stone})
	err := v.Apply(obsWith([3]int{10, 0, 10}, protocol.VoxelsObs{
		Center: [3]int{10, 0, 10}, Radius: 1, Encoding: protocol.EncodingRLE, Data: EncodeRLE(ids),
	}))
	require.NoError(t, err)

	self, ok := v.Self()
	require.True(t, ok)
	assert.Equal(t, goal.Pos{X: 10, Y: 0, Z: 10}, self)
	assert.Equal(t, uint64(7), v.Tick())

	name, ok := v.BlockAt(goal.Pos{X: 11, Y: 0, Z: 10})
	require.True(t, ok)
	assert.Equal(t, "IRON_ORE", name)
	name, _ = v.BlockAt(goal.Pos{X: 10, Y: -1, Z: 10})
	assert.Equal(t, "STONE", name)
	_, ok = v.BlockAt(goal.Pos{X: 13, Y: 0, Z: 10})
	assert.False(t, ok, "outside the window")
}

func TestApplyDelta(t *testing.T) {
	v := newView(t)
	center := [3]int{0, 0, 0}
	require.NoError(t, v.Apply(obsWith(center, protocol.VoxelsObs{
		Center: center, Radius: 1, Encoding: protocol.EncodingRLE, Data: EncodeRLE(window(nil)),
	})))
	require.NoError(t, v.Apply(obsWith(center, protocol.VoxelsObs{
		Center: center, Radius: 1, Encoding: protocol.EncodingDelta,
		Ops: []protocol.VoxelDeltaOp{{D: [3]int{-1, 0, 1}, B: ore}},
	})))
	name, ok := v.BlockAt(goal.Pos{X: -1, Y: 0, Z: 1})
	require.True(t, ok)
	assert.Equal(t, "IRON_ORE", name)

	err := v.Apply(obsWith(center, protocol.VoxelsObs{
		Center: center, Radius: 1, Encoding: protocol.EncodingDelta,
		Ops: []protocol.VoxelDeltaOp{{D: [3]int{2, 0, 0}, B: ore}},
	}))
	assert.Error(t, err)
}

func TestDeltaWithoutBaseline(t *testing.T) {
	v := newView(t)
	err := v.Apply(obsWith([3]int{0, 0, 0}, protocol.VoxelsObs{Radius: 1, Encoding: protocol.EncodingDelta}))
	assert.True(t, errors.Is(err, ErrNoBaseline))

	// The rest of the frame is still taken.
	_, ok := v.Self()
	assert.True(t, ok)

	// A new session drops the window, so a delta after WELCOME needs a fresh baseline.
	require.NoError(t, v.Apply(obsWith([3]int{0, 0, 0}, protocol.VoxelsObs{Radius: 1, Encoding: protocol.EncodingRLE, Data: EncodeRLE(window(nil))})))
	v.Welcome(protocol.WelcomeMsg{AgentID: "A1", WorldParams: protocol.WorldParams{TickRateHz: 20}})
	err = v.Apply(obsWith([3]int{0, 0, 0}, protocol.VoxelsObs{Radius: 1, Encoding: protocol.EncodingDelta}))
	assert.True(t, errors.Is(err, ErrNoBaseline))
	assert.Equal(t, 20, v.TickRate())
}

func TestFindBlocksNearestFirst(t *testing.T) {
	v := newView(t)
	ids := window(map[[3]int]uint16{{1, 1, 1}: ore, {1, 0, 0}: ore, {-1, 0, 0}: stone})
	require.NoError(t, v.Apply(obsWith([3]int{5, 0, 5}, protocol.VoxelsObs{
		Center: [3]int{5, 0, 5}, Radius: 1, Encoding: protocol.EncodingRLE, Data: EncodeRLE(ids),
	})))

	got := v.FindBlocks([]string{"IRON_ORE"}, 10)
	assert.Equal(t, []goal.Pos{{X: 6, Y: 0, Z: 5}, {X: 6, Y: 1, Z: 6}}, got)
	assert.Len(t, v.FindBlocks([]string{"IRON_ORE", "STONE"}, 2), 2)
	assert.Empty(t, v.FindBlocks([]string{"DIAMOND"}, 10))
	assert.True(t, v.KnownBlock("STONE"))
	assert.False(t, v.KnownBlock("DIAMOND"))
}

func TestEntitiesAndCatalogs(t *testing.T) {
	v := newView(t)
	obs := obsWith([3]int{0, 0, 0}, protocol.VoxelsObs{})
	obs.Entities = []protocol.EntityObs{
		{ID: "A1", Type: "AGENT", Pos: [3]int{0, 0, 0}},
		{ID: "A3", Type: "AGENT", Pos: [3]int{9, 0, 0}},
		{ID: "A2", Type: "AGENT", Pos: [3]int{2, 0, 0}},
		{ID: "C1", Type: "CHEST", Pos: [3]int{1, 0, 0}},
	}
	require.NoError(t, v.Apply(obs))

	agents := v.EntitiesOfType("AGENT")
	require.Len(t, agents, 2)
	assert.Equal(t, "A2", agents[0].ID)
	e, ok := v.Entity("C1")
	require.True(t, ok)
	assert.Equal(t, "CHEST", e.Type)

	bps, _ := json.Marshal([]Blueprint{{ID: "hut", AABB: [2][3]int{{0, 0, 0}, {4, 0, 6}}}})
	require.NoError(t, v.ApplyCatalog(protocol.CatalogMsg{Name: protocol.CatalogBlueprints, Data: bps}))
	bp, ok := v.Blueprint("hut")
	require.True(t, ok)
	assert.Equal(t, 7, bp.Span())

	assert.NoError(t, v.ApplyCatalog(protocol.CatalogMsg{Name: "recipes", Data: json.RawMessage(`{}`)}))
	assert.Error(t, v.ApplyCatalog(protocol.CatalogMsg{Name: protocol.CatalogBlockPalette, Data: json.RawMessage(`{}`)}))
}
