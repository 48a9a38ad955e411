package goal

import "fmt"

// WorkKind names the world task issued once a work goal is reached.
type WorkKind string

const (
	WorkMine  WorkKind = "MINE"
	WorkBuild WorkKind = "BUILD_BLUEPRINT"
)

// Work is the task the executor issues on arrival.
type Work struct {
	Kind        WorkKind
	BlockPos    Pos
	BlueprintID string
	Anchor      Pos
	Rotation    int
}

// Worker is a goal that carries arrival work. The executor only performs the
// work for TRAVEL_AND_HOLD instructions.
type Worker interface {
	Goal
	Work() Work
}

// mineReach is the manhattan reach the server allows for MINE.
const mineReach = 2

// Mine walks within reach of a block and breaks it.
type Mine struct {
	Pos Pos
}

func (g Mine) IsInGoal(p Pos) bool { return Manhattan(p, g.Pos) <= mineReach }

func (g Mine) Heuristic(p Pos) float64 {
	d := Manhattan(p, g.Pos) - mineReach
	if d < 0 {
		d = 0
	}
	return float64(d)
}

func (g Mine) Target(Pos) (Pos, float64) { return g.Pos, 1 }

func (g Mine) Work() Work { return Work{Kind: WorkMine, BlockPos: g.Pos} }

func (g Mine) String() string { return "GoalMine" + g.Pos.String() }

// Build walks near a blueprint anchor and starts the server-side build.
type Build struct {
	BlueprintID string
	Anchor      Pos
	Rotation    int
	Radius      int
}

func (g Build) near() Near { return Near{Pos: g.Anchor, Radius: g.Radius} }

func (g Build) IsInGoal(p Pos) bool { return g.near().IsInGoal(p) }

func (g Build) Heuristic(p Pos) float64 { return g.near().Heuristic(p) }

func (g Build) Target(from Pos) (Pos, float64) { return g.near().Target(from) }

func (g Build) Work() Work {
	return Work{Kind: WorkBuild, BlueprintID: g.BlueprintID, Anchor: g.Anchor, Rotation: g.Rotation}
}

func (g Build) String() string {
	return fmt.Sprintf("GoalBuild[%s@%s rot=%d]", g.BlueprintID, g.Anchor, g.Rotation)
}
