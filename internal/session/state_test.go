package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestStateRoundTripKeepsOtherAgents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	st, err := LoadState(path, "pilot")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if st != (State{}) {
		t.Fatalf("expected zero state, got %+v", st)
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := SaveState(path, "pilot", State{ResumeToken: "r1", AgentID: "A1", LastConnectedAt: at.Format(time.RFC3339Nano)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveState(path, "scout", State{ResumeToken: "r2"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	st, err = LoadState(path, "pilot")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.ResumeToken != "r1" || st.AgentID != "A1" || !st.ConnectedTime().Equal(at) {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st, _ := LoadState(path, "scout"); st.ResumeToken != "r2" {
		t.Fatalf("other agent lost: %+v", st)
	}
}

func TestSnapshotUsesConfiguredToken(t *testing.T) {
	s := New(Config{WorldWSURL: "ws://example.invalid", ResumeToken: "keep"}, nil, zerolog.Nop())
	st := s.Snapshot()
	if st.ResumeToken != "keep" || st.LastConnectedAt != "" {
		t.Fatalf("unexpected snapshot: %+v", st)
	}
	if (State{LastConnectedAt: "garbage"}).ConnectedTime() != (time.Time{}) {
		t.Fatalf("bad timestamps should read as zero")
	}
}
