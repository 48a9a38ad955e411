package controlapi

import (
	"time"

	"voxelpilot.ai/internal/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthzResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Paused        bool            `json:"paused"`
	Session       *session.Status `json:"session,omitempty"`
}

// OKResponse acknowledges an operation that returns nothing else.
type OKResponse struct {
	OK     bool   `json:"ok"`
	Paused bool   `json:"paused"`
	Goal   string `json:"goal,omitempty"`
}

// GoalRequest names a goal by coordinates or by block type. X+Y+Z is a block,
// X+Z a column, Y alone a level.
type GoalRequest struct {
	X      *int     `json:"x,omitempty"`
	Y      *int     `json:"y,omitempty"`
	Z      *int     `json:"z,omitempty"`
	Blocks []string `json:"blocks,omitempty"`
}

type ComeRequest struct {
	Entity string `json:"entity"`
}

type MineRequest struct {
	Quantity int      `json:"quantity"`
	Blocks   []string `json:"blocks"`
}

type FollowRequest struct {
	Entities []string `json:"entities,omitempty"`
	Type     string   `json:"type,omitempty"`
}

type ExploreRequest struct {
	X *int `json:"x,omitempty"`
	Z *int `json:"z,omitempty"`
}

type BuildRequest struct {
	Blueprint string `json:"blueprint"`
	Anchor    [3]int `json:"anchor"`
	Rotation  int    `json:"rotation"`
}

type WaypointRequest struct {
	Name string  `json:"name"`
	Tag  string  `json:"tag,omitempty"`
	Pos  *[3]int `json:"pos,omitempty"`
}

type WaypointResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	Pos       [3]int    `json:"pos"`
	CreatedAt time.Time `json:"created_at"`
}

type WaypointListResponse struct {
	Waypoints []WaypointResponse `json:"waypoints"`
}

type ClearRequest struct {
	Tag string `json:"tag,omitempty"`
}

type ClearResponse struct {
	Cleared int `json:"cleared"`
}

type RestoreRequest struct {
	Count int `json:"count,omitempty"`
}

type PositionsResponse struct {
	Positions [][3]int `json:"positions"`
}

type BlacklistResponse struct {
	Pos [3]int `json:"pos"`
}
