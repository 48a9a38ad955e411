package controlapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"voxelpilot.ai/internal/agent"
	"voxelpilot.ai/internal/behavior"
	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/waypoint"
)

var errBadGoal = errors.New("goal needs x,y,z, x,z, y or blocks")

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Paused:        s.ctl.Paused(),
	}
	if s.sess != nil {
		st := s.sess.Status()
		resp.Session = &st
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProc(w http.ResponseWriter, r *http.Request) {
	st, err := s.ctl.Proc()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ctl.Processes())
}

func (s *Server) handleETA(w http.ResponseWriter, r *http.Request) {
	eta, err := s.ctl.ETA()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, eta)
}

func (s *Server) handlePaused(w http.ResponseWriter, r *http.Request) {
	s.ok(w)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.run(w, s.ctl.Pause())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.run(w, s.ctl.Resume())
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.run(w, s.ctl.Cancel())
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	if s.ctl.Goal() == nil {
		s.writeErr(w, behavior.ErrNoGoal)
		return
	}
	s.ok(w)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if !s.decode(w, r, &req) {
		return
	}
	g, err := req.goal()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ctl.SetGoal(g)
	s.ok(w)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	s.run(w, s.ctl.Path())
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Blocks) > 0 {
		s.run(w, s.ctl.GotoBlock(req.Blocks))
		return
	}
	if req.X != nil && req.Y != nil && req.Z != nil {
		s.run(w, s.ctl.GotoPos(goal.Pos{X: *req.X, Y: *req.Y, Z: *req.Z}))
		return
	}
	g, err := req.goal()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.run(w, s.ctl.Goto(g))
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, n := range strings.Split(r.URL.Query().Get("blocks"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	found, err := s.ctl.FindBlocks(names)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	resp := PositionsResponse{Positions: make([][3]int, 0, len(found))}
	for _, p := range found {
		resp.Positions = append(resp.Positions, p.Array())
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	p, err := s.ctl.Blacklist()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, BlacklistResponse{Pos: p.Array()})
}

func (s *Server) handleCome(w http.ResponseWriter, r *http.Request) {
	var req ComeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Entity == "" {
		s.writeError(w, http.StatusBadRequest, "entity is required")
		return
	}
	s.run(w, s.ctl.Come(req.Entity))
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	s.run(w, s.ctl.Surface())
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	var req MineRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Quantity < 0 {
		s.writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	s.run(w, s.ctl.Mine(req.Quantity, req.Blocks))
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if !s.decode(w, r, &req) {
		return
	}
	switch {
	case len(req.Entities) > 0 && req.Type != "":
		s.writeError(w, http.StatusBadRequest, "give entities or type, not both")
	case req.Type != "":
		s.run(w, s.ctl.FollowType(req.Type))
	default:
		s.run(w, s.ctl.Follow(req.Entities))
	}
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	var req ExploreRequest
	if !s.decode(w, r, &req) {
		return
	}
	if (req.X == nil) != (req.Z == nil) {
		s.writeError(w, http.StatusBadRequest, "explore needs both x and z, or neither")
		return
	}
	if req.X == nil {
		s.run(w, s.ctl.ExploreHere())
		return
	}
	s.ctl.Explore(*req.X, *req.Z)
	s.ok(w)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Blueprint == "" {
		s.writeError(w, http.StatusBadRequest, "blueprint is required")
		return
	}
	s.run(w, s.ctl.Build(req.Blueprint, goal.FromArray(req.Anchor), req.Rotation))
}

func (s *Server) handleSetHome(w http.ResponseWriter, r *http.Request) {
	wp, err := s.ctl.SetHome(r.Context())
	s.waypoint(w, http.StatusCreated, wp, err)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	wp, err := s.ctl.Home(r.Context())
	s.waypoint(w, http.StatusOK, wp, err)
}

func (s *Server) handleListWaypoints(w http.ResponseWriter, r *http.Request) {
	var tag waypoint.Tag
	if q := r.URL.Query().Get("tag"); q != "" {
		t, err := waypoint.ParseTag(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tag = t
	}
	ws, err := s.ctl.ListWaypoints(r.Context(), tag)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, waypointList(ws))
}

func (s *Server) handleSaveWaypoint(w http.ResponseWriter, r *http.Request) {
	var req WaypointRequest
	if !s.decode(w, r, &req) {
		return
	}
	var tag waypoint.Tag
	if req.Tag != "" {
		t, err := waypoint.ParseTag(req.Tag)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tag = t
	}
	var pos *goal.Pos
	if req.Pos != nil {
		p := goal.FromArray(*req.Pos)
		pos = &p
	}
	wp, err := s.ctl.SaveWaypoint(r.Context(), strings.TrimSpace(req.Name), tag, pos)
	s.waypoint(w, http.StatusCreated, wp, err)
}

func (s *Server) handleGetWaypoint(w http.ResponseWriter, r *http.Request) {
	wp, err := s.ctl.Waypoint(r.Context(), chi.URLParam(r, "ref"))
	s.waypoint(w, http.StatusOK, wp, err)
}

func (s *Server) handleDeleteWaypoint(w http.ResponseWriter, r *http.Request) {
	if err := s.ctl.DeleteWaypoint(r.Context(), chi.URLParam(r, "ref")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGotoWaypoint(w http.ResponseWriter, r *http.Request) {
	wp, err := s.ctl.GotoWaypoint(r.Context(), chi.URLParam(r, "ref"))
	s.waypoint(w, http.StatusOK, wp, err)
}

func (s *Server) handleGoalWaypoint(w http.ResponseWriter, r *http.Request) {
	wp, err := s.ctl.GoalWaypoint(r.Context(), chi.URLParam(r, "ref"))
	s.waypoint(w, http.StatusOK, wp, err)
}

func (s *Server) handleClearWaypoints(w http.ResponseWriter, r *http.Request) {
	var req ClearRequest
	if !s.decode(w, r, &req) {
		return
	}
	var tag waypoint.Tag
	if req.Tag != "" {
		t, err := waypoint.ParseTag(req.Tag)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tag = t
	}
	n, err := s.ctl.ClearWaypoints(r.Context(), tag)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ClearResponse{Cleared: n})
}

func (s *Server) handleRestoreWaypoints(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if !s.decode(w, r, &req) {
		return
	}
	if q := r.URL.Query().Get("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "count must be a number")
			return
		}
		req.Count = n
	}
	if req.Count < 0 {
		s.writeError(w, http.StatusBadRequest, "count must not be negative")
		return
	}
	ws, err := s.ctl.RestoreWaypoints(r.Context(), req.Count)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, waypointList(ws))
}

func (req GoalRequest) goal() (goal.Goal, error) {
	switch {
	case req.X != nil && req.Y != nil && req.Z != nil:
		return goal.Block{Pos: goal.Pos{X: *req.X, Y: *req.Y, Z: *req.Z}}, nil
	case req.X != nil && req.Z != nil && req.Y == nil:
		return goal.XZ{X: *req.X, Z: *req.Z}, nil
	case req.Y != nil && req.X == nil && req.Z == nil:
		return goal.YLevel{Y: *req.Y}, nil
	}
	return nil, errBadGoal
}

func waypointList(ws []waypoint.Waypoint) WaypointListResponse {
	out := WaypointListResponse{Waypoints: make([]WaypointResponse, 0, len(ws))}
	for _, w := range ws {
		out.Waypoints = append(out.Waypoints, toWaypointResponse(w))
	}
	return out
}

func toWaypointResponse(w waypoint.Waypoint) WaypointResponse {
	return WaypointResponse{ID: w.ID, Name: w.Name, Tag: string(w.Tag), Pos: w.Pos.Array(), CreatedAt: w.CreatedAt}
}

func (s *Server) waypoint(w http.ResponseWriter, status int, wp waypoint.Waypoint, err error) {
	if err != nil {
		s.writeErr(w, err)
		return
	}
	respondJSON(w, status, toWaypointResponse(wp))
}

// decode reads an optional JSON body. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) run(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.ok(w)
}

func (s *Server) ok(w http.ResponseWriter) {
	resp := OKResponse{OK: true, Paused: s.ctl.Paused()}
	if g := s.ctl.Goal(); g != nil {
		resp.Goal = g.String()
	}
	respondJSON(w, http.StatusOK, resp)
}

// statusFor maps operation errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, control.ErrAlreadyPaused),
		errors.Is(err, control.ErrNotPaused),
		errors.Is(err, agent.ErrNoProcessInControl),
		errors.Is(err, agent.ErrNoETA),
		errors.Is(err, agent.ErrNoPosition),
		errors.Is(err, agent.ErrNoBlockTarget),
		errors.Is(err, behavior.ErrNoGoal):
		return http.StatusConflict
	case errors.Is(err, waypoint.ErrNotFound),
		errors.Is(err, agent.ErrEntityNotSeen):
		return http.StatusNotFound
	case errors.Is(err, agent.ErrUnknownBlock),
		errors.Is(err, agent.ErrBadRotation),
		errors.Is(err, agent.ErrBadAnchor),
		errors.Is(err, behavior.ErrNoBlocks),
		errors.Is(err, behavior.ErrNoTargets):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrNoWaypointStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("operation failed")
	}
	s.writeError(w, status, err.Error())
}

// respondJSON encodes before writing the header so an unencodable value
// becomes a 500 instead of an empty 200.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	b, err := json.Marshal(data)
	if err != nil {
		statusCode = http.StatusInternalServerError
		b, _ = json.Marshal(ErrorResponse{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(b, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
