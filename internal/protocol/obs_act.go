package protocol

type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	AgentID         string `json:"agent_id"`
	WorldID         string `json:"world_id,omitempty"`

	World     WorldObs     `json:"world"`
	Self      SelfObs      `json:"self"`
	Inventory []ItemStack  `json:"inventory"`
	Equipment EquipmentObs `json:"equipment"`

	Voxels   VoxelsObs   `json:"voxels"`
	Entities []EntityObs `json:"entities"`
	Events   []Event     `json:"events"`
	Tasks    []TaskObs   `json:"tasks"`
}

type WorldObs struct {
	TimeOfDay float64 `json:"time_of_day"` // 0..1
	Weather   string  `json:"weather"`
	SeasonDay int     `json:"season_day"`
	Biome     string  `json:"biome"`
}

type SelfObs struct {
	Pos     [3]int   `json:"pos"`
	Yaw     int      `json:"yaw"`
	HP      int      `json:"hp"`
	Hunger  int      `json:"hunger"`
	Stamina float64  `json:"stamina"`
	Status  []string `json:"status"`
}

type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type EquipmentObs struct {
	MainHand string   `json:"main_hand"`
	Armor    []string `json:"armor"`
}

// Voxel encodings.
const (
	EncodingRLE   = "RLE"
	EncodingDelta = "DELTA"
)

type VoxelsObs struct {
	Center   [3]int         `json:"center"`
	Radius   int            `json:"radius"`
	Encoding string         `json:"encoding"` // "RLE" or "DELTA"
	Data     string         `json:"data,omitempty"`
	Ops      []VoxelDeltaOp `json:"ops,omitempty"`
}

type VoxelDeltaOp struct {
	D [3]int `json:"d"` // delta from center (dx,dy,dz)
	B uint16 `json:"b"` // block palette id
}

type EntityObs struct {
	ID   string   `json:"id"`
	Type string   `json:"type"` // "AGENT", "CHEST", ...
	Pos  [3]int   `json:"pos"`
	Tags []string `json:"tags,omitempty"`

	// Optional payload for specialized entity types (e.g. "ITEM").
	Item  string `json:"item,omitempty"`
	Count int    `json:"count,omitempty"`
}

type TaskObs struct {
	TaskID   string  `json:"task_id"`
	Kind     string  `json:"kind"`
	Progress float64 `json:"progress"`
	Target   [3]int  `json:"target,omitempty"`
	EtaTicks int     `json:"eta_ticks,omitempty"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	AgentID         string       `json:"agent_id"`
	Instants        []InstantReq `json:"instants,omitempty"`
	Tasks           []TaskReq    `json:"tasks,omitempty"`
	Cancel          []string     `json:"cancel,omitempty"`
}

// Empty reports whether the ACT carries nothing worth sending.
func (a ActMsg) Empty() bool {
	return len(a.Instants) == 0 && len(a.Tasks) == 0 && len(a.Cancel) == 0
}

type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Channel string `json:"channel,omitempty"`
	Text    string `json:"text,omitempty"`
	To      string `json:"to,omitempty"`
}

// Task kinds understood by the world server.
const (
	TaskMoveTo         = "MOVE_TO"
	TaskFollow         = "FOLLOW"
	TaskMine           = "MINE"
	TaskBuildBlueprint = "BUILD_BLUEPRINT"
)

type TaskReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Target    [3]int  `json:"target,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`
	Distance  float64 `json:"distance,omitempty"`
	TargetID  string  `json:"target_id,omitempty"`

	BlockPos    [3]int `json:"block_pos,omitempty"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	Anchor      [3]int `json:"anchor,omitempty"`
	Rotation    int    `json:"rotation,omitempty"`
}
