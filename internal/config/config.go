// Package config loads the agent configuration from YAML or TOML. Files are
// checked against an embedded JSON schema; keys left out keep their defaults.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON []byte

type Config struct {
	WorldURL        string `json:"world_ws_url"`
	AgentName       string `json:"agent_name"`
	ResumeToken     string `json:"resume_token,omitempty"`
	AuthToken       string `json:"auth_token,omitempty"`
	WorldPreference string `json:"world_preference,omitempty"`
	LogLevel        string `json:"log_level"`
	ControlListen   string `json:"control_listen"`
	TraceDir        string `json:"trace_dir"`
	WaypointDB      string `json:"waypoint_db"`
	StateFile       string `json:"state_file"`
	FollowDistance  int    `json:"follow_distance"`
	ExploreRadius   int    `json:"explore_radius"`
	ExploreSeed     int64  `json:"explore_seed"`
	MineScanLimit   int    `json:"mine_scan_limit"`
	StallTicks      int    `json:"stall_ticks"`
	MoveTolerance   int    `json:"move_tolerance"`
}

func Default() Config {
	return Config{
		WorldURL:       "ws://localhost:8080/v1/ws",
		AgentName:      "pilot",
		LogLevel:       "info",
		ControlListen:  "127.0.0.1:8091",
		TraceDir:       "data/trace",
		WaypointDB:     "data/waypoints.sqlite",
		StateFile:      "data/session.json",
		FollowDistance: 3,
		ExploreRadius:  16,
		ExploreSeed:    1,
		MineScanLimit:  64,
		StallTicks:     40,
		MoveTolerance:  1,
	}
}

// Load reads path, dispatching on its extension (.yaml, .yml or .toml).
func Load(path string) (Config, error) {
	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return Config{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &doc); err != nil {
			return Config{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
	return fromDocument(doc)
}

func fromDocument(doc map[string]any) (Config, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	// Round-trip through JSON so YAML and TOML values look like JSON values
	// to the schema validator.
	b, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(b, &normalized); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	s, err := schema()
	if err != nil {
		return Config{}, err
	}
	if err := s.Validate(normalized); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func schema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile("config.schema.json")
}
