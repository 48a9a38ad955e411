package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type               string                  `json:"type"`
	ProtocolVersion    string                  `json:"protocol_version"`
	SupportedVersions  []string                `json:"supported_versions,omitempty"`
	AgentName          string                  `json:"agent_name"`
	Capabilities       HelloCapabilities       `json:"capabilities"`
	ClientCapabilities HelloClientCapabilities `json:"client_capabilities,omitempty"`
	Auth               *HelloAuth              `json:"auth,omitempty"`
	WorldPreference    string                  `json:"world_preference,omitempty"`
}

type HelloCapabilities struct {
	DeltaVoxels bool `json:"delta_voxels,omitempty"`
	MaxQueue    int  `json:"max_queue,omitempty"`
}

type HelloClientCapabilities struct {
	DeltaVoxels bool `json:"delta_voxels,omitempty"`
	AckRequired bool `json:"ack_required,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SelectedVersion string         `json:"selected_version,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	AgentID         string         `json:"agent_id"`
	ResumeToken     string         `json:"resume_token"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
	CurrentWorldID  string         `json:"current_world_id,omitempty"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  [3]int `json:"chunk_size"`
	Height     int    `json:"height"`
	ObsRadius  int    `json:"obs_radius"`
	DayTicks   int    `json:"day_ticks"`
	Seed       int64  `json:"seed"`
}

type CatalogDigests struct {
	BlockPalette     DigestRef `json:"block_palette"`
	ItemPalette      DigestRef `json:"item_palette"`
	BlueprintsDigest string    `json:"blueprints_digest"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// Catalog names the agent consumes.
const (
	CatalogBlockPalette = "block_palette"
	CatalogBlueprints   = "blueprints"
)

// CATALOG (server -> client). Data stays raw until a consumer asks for it.
type CatalogMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Name            string          `json:"name"`
	Digest          string          `json:"digest"`
	Part            int             `json:"part"`
	TotalParts      int             `json:"total_parts"`
	Data            json.RawMessage `json:"data"`
}

// ACK (server -> client) for ACT messages when acks are negotiated.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	ServerTick      uint64 `json:"server_tick,omitempty"`
}
