package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "pilot.yaml", `
world_ws_url: ws://world:8080/v1/ws
agent_name: miner-1
log_level: debug
follow_distance: 5
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorldURL != "ws://world:8080/v1/ws" || cfg.AgentName != "miner-1" || cfg.LogLevel != "debug" || cfg.FollowDistance != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.StallTicks != Default().StallTicks || cfg.ControlListen != Default().ControlListen {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, "pilot.toml", `
agent_name = "scout"
explore_radius = 32
explore_seed = 99
trace_dir = "/tmp/trace"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AgentName != "scout" || cfg.ExploreRadius != 32 || cfg.ExploreSeed != 99 || cfg.TraceDir != "/tmp/trace" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.WorldURL != Default().WorldURL {
		t.Fatalf("default url lost: %q", cfg.WorldURL)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name, body string
	}{
		{"unknown.yaml", "agent_nmae: typo\n"},
		{"level.yaml", "log_level: loud\n"},
		{"url.toml", "world_ws_url = \"http://world\"\n"},
		{"stall.yaml", "stall_ticks: 0\n"},
		{"type.toml", "follow_distance = \"far\"\n"},
	}
	for _, tc := range cases {
		if _, err := Load(writeFile(t, tc.name, tc.body)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
	if _, err := Load(writeFile(t, "pilot.json", "{}")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported extension, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestEmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got %+v", cfg)
	}
}
