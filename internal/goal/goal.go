// Package goal describes where the agent wants to be. Goals are immutable values
// consumed by the executor; they never plan a path themselves.
package goal

import (
	"fmt"
	"math"
	"strings"
)

// Pos is a block position in world coordinates.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p Pos) String() string { return fmt.Sprintf("[%d,%d,%d]", p.X, p.Y, p.Z) }

// Add returns p offset by d.
func (p Pos) Add(d Pos) Pos { return Pos{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z} }

// Array converts to the wire shape used by the world protocol.
func (p Pos) Array() [3]int { return [3]int{p.X, p.Y, p.Z} }

// FromArray is the inverse of Array.
func FromArray(a [3]int) Pos { return Pos{X: a[0], Y: a[1], Z: a[2]} }

// DistXZ is the manhattan distance on the horizontal plane, the metric the world
// server uses to complete movement tasks.
func DistXZ(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Z-b.Z)
}

// Manhattan is the full 3D manhattan distance used by the server's reach checks.
func Manhattan(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)
}

// MoveTolerance mirrors how the server rounds a MOVE_TO tolerance: up to the next
// whole block, never below one.
func MoveTolerance(tolerance float64) int {
	want := int(tolerance)
	if float64(want) < tolerance {
		want++
	}
	if want < 1 {
		want = 1
	}
	return want
}

// Goal is a navigation target.
//
// Target picks the concrete block the executor should walk to from the given
// position, together with the tolerance it should ask the server for.
type Goal interface {
	IsInGoal(p Pos) bool
	Heuristic(p Pos) float64
	Target(from Pos) (Pos, float64)
	String() string
}

// Block is reached when the agent stands on or next to a block; the server
// never completes a MOVE_TO closer than one block.
type Block struct {
	Pos Pos
}

func (g Block) IsInGoal(p Pos) bool {
	return p.Y == g.Pos.Y && DistXZ(p, g.Pos) <= 1
}

func (g Block) Heuristic(p Pos) float64 { return float64(Manhattan(p, g.Pos)) }

func (g Block) Target(Pos) (Pos, float64) { return g.Pos, 0 }

func (g Block) String() string { return "GoalBlock" + g.Pos.String() }

// Near is reached within Radius blocks of Pos on the horizontal plane.
type Near struct {
	Pos    Pos
	Radius int
}

func (g Near) IsInGoal(p Pos) bool {
	return DistXZ(p, g.Pos) <= MoveTolerance(float64(g.Radius))
}

func (g Near) Heuristic(p Pos) float64 {
	d := DistXZ(p, g.Pos) - g.Radius
	if d < 0 {
		d = 0
	}
	return float64(d)
}

func (g Near) Target(Pos) (Pos, float64) { return g.Pos, float64(g.Radius) }

func (g Near) String() string { return fmt.Sprintf("GoalNear%s r=%d", g.Pos, g.Radius) }

// XZ targets a column regardless of height.
type XZ struct {
	X int
	Z int
}

func (g XZ) IsInGoal(p Pos) bool {
	return DistXZ(p, Pos{X: g.X, Y: p.Y, Z: g.Z}) <= 1
}

func (g XZ) Heuristic(p Pos) float64 {
	return float64(DistXZ(p, Pos{X: g.X, Z: g.Z}))
}

func (g XZ) Target(from Pos) (Pos, float64) { return Pos{X: g.X, Y: from.Y, Z: g.Z}, 0 }

func (g XZ) String() string { return fmt.Sprintf("GoalXZ[%d,%d]", g.X, g.Z) }

// YLevel is reached at a given height anywhere.
type YLevel struct {
	Y int
}

func (g YLevel) IsInGoal(p Pos) bool { return p.Y == g.Y }

func (g YLevel) Heuristic(p Pos) float64 { return float64(abs(p.Y - g.Y)) }

func (g YLevel) Target(from Pos) (Pos, float64) { return Pos{X: from.X, Y: g.Y, Z: from.Z}, 0 }

func (g YLevel) String() string { return fmt.Sprintf("GoalYLevel[%d]", g.Y) }

// Composite is reached when any member is reached. Target follows the member
// with the lowest heuristic, first member winning ties.
type Composite []Goal

func (c Composite) IsInGoal(p Pos) bool {
	for _, g := range c {
		if g.IsInGoal(p) {
			return true
		}
	}
	return false
}

func (c Composite) Heuristic(p Pos) float64 {
	best := math.Inf(1)
	for _, g := range c {
		if h := g.Heuristic(p); h < best {
			best = h
		}
	}
	return best
}

func (c Composite) Target(from Pos) (Pos, float64) {
	var best Goal
	bestH := math.Inf(1)
	for _, g := range c {
		if h := g.Heuristic(from); h < bestH {
			best, bestH = g, h
		}
	}
	if best == nil {
		return from, 0
	}
	return best.Target(from)
}

func (c Composite) String() string {
	parts := make([]string, 0, len(c))
	for _, g := range c {
		parts = append(parts, g.String())
	}
	return "GoalComposite{" + strings.Join(parts, ",") + "}"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
