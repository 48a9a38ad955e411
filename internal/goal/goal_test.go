package goal

import "testing"

func TestMoveTolerance(t *testing.T) {
	if got := MoveTolerance(0); got != 1 {
		t.Fatalf("MoveTolerance(0)=%d", got)
	}
	if got := MoveTolerance(1.2); got != 2 {
		t.Fatalf("MoveTolerance(1.2)=%d", got)
	}
	if got := MoveTolerance(3.0); got != 3 {
		t.Fatalf("MoveTolerance(3.0)=%d", got)
	}
}

func TestBlockReachedFromNeighbor(t *testing.T) {
	g := Block{Pos: Pos{X: 4, Z: 4}}
	if !g.IsInGoal(Pos{X: 4, Z: 5}) {
		t.Fatalf("neighbor should satisfy block goal")
	}
	if g.IsInGoal(Pos{X: 5, Z: 5}) {
		t.Fatalf("diagonal is two steps away")
	}
	if g.IsInGoal(Pos{X: 4, Y: 3, Z: 4}) {
		t.Fatalf("different height should not satisfy block goal")
	}
}

func TestNearUsesServerRounding(t *testing.T) {
	g := Near{Pos: Pos{}, Radius: 0}
	if !g.IsInGoal(Pos{X: 1}) {
		t.Fatalf("radius 0 rounds up to one block")
	}
	g.Radius = 3
	if !g.IsInGoal(Pos{X: 2, Z: 1}) || g.IsInGoal(Pos{X: 2, Z: 2}) {
		t.Fatalf("radius 3 boundary mismatch")
	}
	if h := g.Heuristic(Pos{X: 10}); h != 7 {
		t.Fatalf("heuristic=%v want 7", h)
	}
}

func TestCompositeTargetsClosestMember(t *testing.T) {
	c := Composite{
		Block{Pos: Pos{X: 10}},
		Block{Pos: Pos{X: -2}},
		Block{Pos: Pos{X: 2}},
	}
	got, _ := c.Target(Pos{})
	if got != (Pos{X: -2}) {
		t.Fatalf("first closest member should win ties, got %s", got)
	}
	if !c.IsInGoal(Pos{X: 9}) {
		t.Fatalf("any member should satisfy composite")
	}
	empty := Composite{}
	if p, _ := empty.Target(Pos{X: 1}); p != (Pos{X: 1}) {
		t.Fatalf("empty composite should target origin, got %s", p)
	}
}

func TestWorkGoals(t *testing.T) {
	var w Worker = Mine{Pos: Pos{X: 3, Z: 0}}
	if !w.IsInGoal(Pos{X: 1}) || w.IsInGoal(Pos{X: 0}) {
		t.Fatalf("mine reach should be two blocks")
	}
	if w.Work().Kind != WorkMine || w.Work().BlockPos != (Pos{X: 3}) {
		t.Fatalf("mine work mismatch: %+v", w.Work())
	}

	w = Build{BlueprintID: "hut", Anchor: Pos{X: 5, Z: 5}, Rotation: 90, Radius: 2}
	if !w.IsInGoal(Pos{X: 5, Z: 3}) {
		t.Fatalf("build goal should accept anchor radius")
	}
	if got := w.Work(); got.Kind != WorkBuild || got.BlueprintID != "hut" || got.Rotation != 90 {
		t.Fatalf("build work mismatch: %+v", got)
	}
}
