package controlapi

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/agent"
	"voxelpilot.ai/internal/config"
	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/protocol"
	"voxelpilot.ai/internal/session"
	"voxelpilot.ai/internal/waypoint"
)

type mockSession struct {
	statusFunc func() session.Status
}

func (m *mockSession) Status() session.Status { return m.statusFunc() }

type testEnv struct {
	t      *testing.T
	agent  *agent.Agent
	router http.Handler
	tick   uint64
}

func newTestEnv(t *testing.T, withWaypoints bool) *testEnv {
	t.Helper()
	var store *waypoint.Store
	if withWaypoints {
		var err error
		store, err = waypoint.Open(filepath.Join(t.TempDir(), "wp.sqlite"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}
	a, err := agent.New(config.Default(), zerolog.Nop(), store, nil)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	a.OnWelcome(protocol.WelcomeMsg{Type: protocol.TypeWelcome, AgentID: "A1", WorldParams: protocol.WorldParams{TickRateHz: 5, Height: 1}})
	sess := &mockSession{statusFunc: func() session.Status {
		return session.Status{Connected: true, AgentID: "A1", LastObsTick: 42}
	}}
	srv := New(Config{Listen: "127.0.0.1:0"}, a, sess, zerolog.Nop())
	return &testEnv{t: t, agent: a, router: srv.setupRoutes()}
}

func (e *testEnv) step(pos [3]int) *protocol.ActMsg {
	e.tick++
	return e.agent.OnObs(protocol.ObsMsg{Type: protocol.TypeObs, Tick: e.tick, AgentID: "A1", Self: protocol.SelfObs{Pos: pos}})
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false)
	rr := env.do(http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp HealthzResponse
	decodeBody(t, rr, &resp)
	if resp.Status != "ok" || resp.Session == nil || !resp.Session.Connected || resp.Session.LastObsTick != 42 {
		t.Fatalf("unexpected healthz: %+v", resp)
	}
}

func TestPauseResumeConflicts(t *testing.T) {
	env := newTestEnv(t, false)

	if rr := env.do(http.MethodPost, "/v1/resume", ""); rr.Code != http.StatusConflict {
		t.Fatalf("resume while running: expected 409, got %d", rr.Code)
	}
	rr := env.do(http.MethodPost, "/v1/pause", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("pause: expected 200, got %d", rr.Code)
	}
	var ok OKResponse
	decodeBody(t, rr, &ok)
	if !ok.Paused {
		t.Fatalf("expected paused=true")
	}
	if rr := env.do(http.MethodPost, "/v1/pause", ""); rr.Code != http.StatusConflict {
		t.Fatalf("double pause: expected 409, got %d", rr.Code)
	}

	env.step([3]int{})
	rr = env.do(http.MethodGet, "/v1/proc", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("proc: expected 200, got %d", rr.Code)
	}
	var st agent.ProcStatus
	decodeBody(t, rr, &st)
	if st.Name != "Pause/Resume Commands" || st.CommandType != "REQUEST_PAUSE" {
		t.Fatalf("unexpected proc: %+v", st)
	}

	if rr := env.do(http.MethodPost, "/v1/resume", ""); rr.Code != http.StatusOK {
		t.Fatalf("resume: expected 200, got %d", rr.Code)
	}
}

func TestProcAndETAWithNothingInControl(t *testing.T) {
	env := newTestEnv(t, false)
	env.step([3]int{})
	for _, path := range []string{"/v1/proc", "/v1/eta"} {
		rr := env.do(http.MethodGet, path, "")
		if rr.Code != http.StatusConflict {
			t.Fatalf("%s: expected 409, got %d", path, rr.Code)
		}
		var resp ErrorResponse
		decodeBody(t, rr, &resp)
		if resp.Error == "" {
			t.Fatalf("%s: expected an error message", path)
		}
	}
}

func TestGotoThenProcessesAndETA(t *testing.T) {
	env := newTestEnv(t, false)
	env.step([3]int{})

	rr := env.do(http.MethodPost, "/v1/goto", `{"x":6,"y":0,"z":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("goto: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	act := env.step([3]int{})
	if act == nil || len(act.Tasks) != 1 || act.Tasks[0].Target != [3]int{6, 0, 0} {
		t.Fatalf("expected a MOVE_TO toward the goal, got %+v", act)
	}

	rr = env.do(http.MethodGet, "/v1/eta", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("eta: expected 200, got %d", rr.Code)
	}
	var eta agent.ETA
	decodeBody(t, rr, &eta)
	if eta.GoalTicks != 5 || eta.GoalSeconds != 1 {
		t.Fatalf("unexpected eta: %+v", eta)
	}

	rr = env.do(http.MethodGet, "/v1/processes", "")
	var rep struct {
		Tick    uint64 `json:"tick"`
		Entries []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"entries"`
	}
	decodeBody(t, rr, &rep)
	if len(rep.Entries) != 7 {
		t.Fatalf("expected 7 processes, got %d", len(rep.Entries))
	}
	found := false
	for _, e := range rep.Entries {
		if e.State == "in-control" {
			found = e.Name == "Custom Goal GoalBlock[6,0,0]"
		}
	}
	if !found {
		t.Fatalf("custom goal not in control: %+v", rep.Entries)
	}

	if rr := env.do(http.MethodPost, "/v1/cancel", ""); rr.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", rr.Code)
	}
	env.step([3]int{})
	rr = env.do(http.MethodGet, "/v1/proc", "")
	var st agent.ProcStatus
	decodeBody(t, rr, &st)
	if st.CommandType != "CANCEL" {
		t.Fatalf("expected cancel in control, got %+v", st)
	}
}

func TestBadRequests(t *testing.T) {
	env := newTestEnv(t, false)
	palette, _ := json.Marshal([]string{"AIR", "STONE"})
	env.agent.OnCatalog(protocol.CatalogMsg{Name: protocol.CatalogBlockPalette, Data: palette})

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/v1/goto", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/goto", `{"x":1}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/goto", `{"blocks":["GOLD"]}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/goto", `not json`, http.StatusBadRequest},
		{http.MethodPost, "/v1/goto", `{"x":1,"w":2}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/mine", `{"quantity":-1,"blocks":["STONE"]}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/mine", `{"quantity":1}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/follow", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/follow", `{"entities":["a"],"type":"player"}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/explore", `{"x":1}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/build", `{"blueprint":"hut","rotation":45}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/build", `{"blueprint":"hut","anchor":[0,3,0]}`, http.StatusBadRequest},
		{http.MethodPost, "/v1/come", `{"entity":"ghost"}`, http.StatusNotFound},
		{http.MethodPost, "/v1/path", ``, http.StatusConflict},
		{http.MethodGet, "/v1/goal", ``, http.StatusConflict},
		{http.MethodPost, "/v1/surface", ``, http.StatusConflict},
		{http.MethodGet, "/v1/waypoints", ``, http.StatusServiceUnavailable},
		{http.MethodGet, "/v1/find", ``, http.StatusBadRequest},
		{http.MethodGet, "/v1/find?blocks=GOLD", ``, http.StatusBadRequest},
		{http.MethodPost, "/v1/blacklist", ``, http.StatusConflict},
	}
	for _, tc := range cases {
		rr := env.do(tc.method, tc.path, tc.body)
		if rr.Code != tc.want {
			t.Fatalf("%s %s %s: expected %d, got %d: %s", tc.method, tc.path, tc.body, tc.want, rr.Code, rr.Body.String())
		}
	}
}

func TestSetGoalAndPath(t *testing.T) {
	env := newTestEnv(t, false)
	env.step([3]int{})

	rr := env.do(http.MethodPost, "/v1/goal", `{"y":0}`)
	var ok OKResponse
	decodeBody(t, rr, &ok)
	if ok.Goal != "GoalYLevel[0]" {
		t.Fatalf("unexpected goal %q", ok.Goal)
	}
	if act := env.step([3]int{}); act != nil {
		t.Fatalf("setting a goal must not move, got %+v", act)
	}
	if rr := env.do(http.MethodPost, "/v1/goal", `{"x":3,"z":-2}`); rr.Code != http.StatusOK {
		t.Fatalf("goal: expected 200, got %d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/v1/path", ""); rr.Code != http.StatusOK {
		t.Fatalf("path: expected 200, got %d", rr.Code)
	}
	act := env.step([3]int{})
	if act == nil || act.Tasks[0].Target != [3]int{3, 0, -2} {
		t.Fatalf("expected a move to the stored goal, got %+v", act)
	}
}

func TestWaypointLifecycle(t *testing.T) {
	env := newTestEnv(t, true)
	env.step([3]int{4, 0, 4})

	rr := env.do(http.MethodPost, "/v1/sethome", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("sethome: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = env.do(http.MethodPost, "/v1/waypoints", `{"name":"Quarry","pos":[10,0,-3]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("save: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var quarry WaypointResponse
	decodeBody(t, rr, &quarry)
	if quarry.Tag != "USER" || quarry.Pos != [3]int{10, 0, -3} {
		t.Fatalf("unexpected waypoint: %+v", quarry)
	}
	if rr := env.do(http.MethodPost, "/v1/waypoints", `{"name":"x","tag":"CASTLE"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad tag: expected 400, got %d", rr.Code)
	}

	rr = env.do(http.MethodGet, "/v1/waypoints?tag=home", "")
	var list WaypointListResponse
	decodeBody(t, rr, &list)
	if len(list.Waypoints) != 1 || list.Waypoints[0].Pos != [3]int{4, 0, 4} {
		t.Fatalf("unexpected home list: %+v", list)
	}

	rr = env.do(http.MethodGet, "/v1/waypoints/quarry", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("info by name: expected 200, got %d", rr.Code)
	}

	env.step([3]int{0, 0, 0})
	if rr := env.do(http.MethodPost, "/v1/waypoints/"+quarry.ID+"/goto", ""); rr.Code != http.StatusOK {
		t.Fatalf("goto waypoint: expected 200, got %d", rr.Code)
	}
	act := env.step([3]int{0, 0, 0})
	if act == nil || act.Tasks[0].Target != [3]int{10, 0, -3} {
		t.Fatalf("expected a move to the waypoint, got %+v", act)
	}

	if rr := env.do(http.MethodDelete, "/v1/waypoints/"+quarry.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := env.do(http.MethodDelete, "/v1/waypoints/"+quarry.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
	rr = env.do(http.MethodPost, "/v1/waypoints/restore", "")
	decodeBody(t, rr, &list)
	if len(list.Waypoints) != 1 || list.Waypoints[0].ID != quarry.ID {
		t.Fatalf("unexpected restore: %+v", list)
	}

	rr = env.do(http.MethodPost, "/v1/waypoints/clear", `{"tag":"USER"}`)
	var cleared ClearResponse
	decodeBody(t, rr, &cleared)
	if cleared.Cleared != 1 {
		t.Fatalf("expected 1 cleared, got %d", cleared.Cleared)
	}

	if rr := env.do(http.MethodPost, "/v1/home", ""); rr.Code != http.StatusOK {
		t.Fatalf("home: expected 200, got %d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/v1/waypoints/nowhere/goal", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown waypoint: expected 404, got %d", rr.Code)
	}
}

func TestFindVisibleBlocks(t *testing.T) {
	env := newTestEnv(t, false)
	palette, _ := json.Marshal([]string{"AIR", "STONE"})
	env.agent.OnCatalog(protocol.CatalogMsg{Name: protocol.CatalogBlockPalette, Data: palette})
	env.step([3]int{})

	rr := env.do(http.MethodGet, "/v1/find?blocks=STONE", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("find: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp PositionsResponse
	decodeBody(t, rr, &resp)
	if resp.Positions == nil || len(resp.Positions) != 0 {
		t.Fatalf("expected an empty list before any voxels arrive, got %+v", resp)
	}
}

type unboundedProcess struct{}

func (unboundedProcess) Active() bool        { return true }
func (unboundedProcess) Priority() float64   { return math.Inf(1) }
func (unboundedProcess) Temporary() bool     { return false }
func (unboundedProcess) OnLostControl()      {}
func (unboundedProcess) DisplayName() string { return "Unbounded" }
func (unboundedProcess) OnTick(bool, bool) control.Command {
	return control.Travel(goal.XZ{X: 4})
}

func TestInfinitePriorityStillEncodes(t *testing.T) {
	env := newTestEnv(t, false)
	if err := env.agent.Manager().Register(&unboundedProcess{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	env.step([3]int{})

	rr := env.do(http.MethodGet, "/v1/proc", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("proc: expected 200, got %d", rr.Code)
	}
	var st map[string]any
	decodeBody(t, rr, &st)
	if st["name"] != "Unbounded" {
		t.Fatalf("unexpected proc: %v", st)
	}
	if p, ok := st["priority"]; !ok || p != nil {
		t.Fatalf("expected null priority, got %v", st)
	}

	rr = env.do(http.MethodGet, "/v1/processes", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("processes: expected 200, got %d", rr.Code)
	}
	var rep struct {
		Entries []map[string]any `json:"entries"`
	}
	decodeBody(t, rr, &rep)
	var found bool
	for _, e := range rep.Entries {
		if e["name"] == "Unbounded" {
			found = true
			if e["priority"] != nil || e["state"] != "in-control" {
				t.Fatalf("unexpected entry: %v", e)
			}
		}
	}
	if !found {
		t.Fatalf("process missing from report: %v", rep.Entries)
	}
}

func TestRespondJSONUnencodableIs500(t *testing.T) {
	rr := httptest.NewRecorder()
	respondJSON(rr, http.StatusOK, map[string]float64{"x": math.NaN()})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Error == "" {
		t.Fatalf("expected an error message")
	}
}
