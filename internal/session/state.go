package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State is what a pilot keeps between runs so it can resume as the same
// agent. A state file holds one entry per agent name.
type State struct {
	ResumeToken     string `json:"resume_token,omitempty"`
	AgentID         string `json:"agent_id,omitempty"`
	LastConnectedAt string `json:"last_connected_at,omitempty"`
	LastObsTick     uint64 `json:"last_obs_tick,omitempty"`
}

func loadStateFile(path string) (map[string]State, error) {
	if path == "" {
		return map[string]State{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]State{}, nil
		}
		return nil, err
	}
	var m map[string]State
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if m == nil {
		m = map[string]State{}
	}
	return m, nil
}

// LoadState returns the saved state for key. A missing file or entry yields
// the zero State.
func LoadState(path, key string) (State, error) {
	m, err := loadStateFile(path)
	if err != nil {
		return State{}, err
	}
	return m[key], nil
}

// SaveState replaces the entry for key, keeping the others.
func SaveState(path, key string, st State) error {
	if path == "" {
		return nil
	}
	m, err := loadStateFile(path)
	if err != nil {
		return err
	}
	m[key] = st
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

// Snapshot captures what SaveState needs from a session.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		ResumeToken: s.resumeToken,
		AgentID:     s.status.AgentID,
		LastObsTick: s.status.LastObsTick,
	}
	if !s.status.LastConnectedAt.IsZero() {
		st.LastConnectedAt = s.status.LastConnectedAt.UTC().Format(time.RFC3339Nano)
	}
	return st
}

func (st State) ConnectedTime() time.Time {
	if st.LastConnectedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, st.LastConnectedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
