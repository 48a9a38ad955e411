package behavior

import (
	"fmt"

	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
)

// Explore walks an outward spiral of waypoints around an origin column. The
// waypoints are jittered with a seeded hash so two agents exploring from the
// same origin spread out, while one agent always walks the same route.
type Explore struct {
	base
	world World
	step  int
	seed  int64

	origin goal.XZ
	n      int
	target goal.XZ
}

func NewExplore(log zerolog.Logger, world World, step int, seed int64) *Explore {
	if step < 1 {
		step = 1
	}
	return &Explore{base: base{log: componentLog(log, "explore")}, world: world, step: step, seed: seed}
}

func (e *Explore) Start(x, z int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.origin = goal.XZ{X: x, Z: z}
	e.n = 0
	e.target = e.waypoint(0)
	e.running = true
	e.log.Info().Int("x", x).Int("z", z).Msg("exploring")
}

func (e *Explore) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running, e.driving = false, false
}

func (e *Explore) DisplayName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("Explore from %d,%d", e.origin.X, e.origin.Z)
}

// Target is the waypoint currently walked to.
func (e *Explore) Target() goal.XZ {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

func (e *Explore) OnTick(calcFailed, _ bool) control.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return control.NoOp()
	}
	self, ok := e.world.Self()
	if e.failed(calcFailed) || (ok && e.target.IsInGoal(self)) {
		e.n++
		e.target = e.waypoint(e.n)
	}
	return e.issue(control.Travel(e.target))
}

var spiral = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// waypoint n lies on ring n/8+1, in one of eight compass directions.
func (e *Explore) waypoint(n int) goal.XZ {
	ring := n/len(spiral) + 1
	dir := spiral[n%len(spiral)]
	x := e.origin.X + dir[0]*ring*e.step
	z := e.origin.Z + dir[1]*ring*e.step
	if span := e.step / 2; span > 0 {
		h := hash2(e.seed, x, z)
		x += int(h%uint64(2*span+1)) - span
		z += int((h>>32)%uint64(2*span+1)) - span
	}
	return goal.XZ{X: x, Z: z}
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9))
}
