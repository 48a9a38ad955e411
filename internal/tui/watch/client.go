package watch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// --- Message types ---

type sessionState struct {
	Connected   bool   `json:"connected"`
	AgentID     string `json:"agent_id"`
	WorldID     string `json:"world_id"`
	LastObsTick uint64 `json:"last_obs_tick"`
	LastError   string `json:"last_error"`
	Reconnects  int    `json:"reconnects"`
}

type healthMsg struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Paused        bool          `json:"paused"`
	Session       *sessionState `json:"session"`
}

type procState struct {
	Class     string   `json:"class"`
	Name      string   `json:"name"`
	Priority  *float64 `json:"priority"`
	Temporary bool     `json:"temporary"`
	Command   string   `json:"command"`
	Tick      uint64   `json:"tick"`
}

type processEntry struct {
	Name      string   `json:"name"`
	Priority  *float64 `json:"priority"`
	Active    bool     `json:"active"`
	Temporary bool     `json:"temporary"`
	State     string   `json:"state"`
}

type etaState struct {
	SegmentTicks   int     `json:"segment_ticks"`
	GoalTicks      int     `json:"goal_ticks"`
	SegmentSeconds float64 `json:"segment_seconds"`
	GoalSeconds    float64 `json:"goal_seconds"`
}

// snapshotMsg is one poll of the control API. Proc and ETA are nil when the
// pilot has nothing in control.
type snapshotMsg struct {
	health    healthMsg
	proc      *procState
	eta       *etaState
	processes []processEntry
	at        time.Time
}

type pollMsg time.Time

type actionDoneMsg struct{ action string }

type errMsg error

// --- Commands ---

var httpClient = &http.Client{Timeout: 3 * time.Second}

func getJSON(url string, v any) (int, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(v)
}

func fetchSnapshot(apiURL string) tea.Msg {
	var snap snapshotMsg
	if _, err := getJSON(apiURL+"/healthz", &snap.health); err != nil {
		return errMsg(err)
	}
	var proc procState
	if code, err := getJSON(apiURL+"/v1/proc", &proc); err != nil {
		return errMsg(err)
	} else if code == http.StatusOK {
		snap.proc = &proc
	}
	var eta etaState
	if code, err := getJSON(apiURL+"/v1/eta", &eta); err != nil {
		return errMsg(err)
	} else if code == http.StatusOK {
		snap.eta = &eta
	}
	var rep struct {
		Entries []processEntry `json:"entries"`
	}
	if _, err := getJSON(apiURL+"/v1/processes", &rep); err != nil {
		return errMsg(err)
	}
	snap.processes = rep.Entries
	snap.at = time.Now()
	return snap
}

// postAction calls one of the execution control endpoints.
func postAction(apiURL, action string) tea.Cmd {
	return func() tea.Msg {
		resp, err := httpClient.Post(apiURL+"/v1/"+action, "application/json", nil)
		if err != nil {
			return errMsg(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			var e struct {
				Error string `json:"error"`
			}
			_ = json.NewDecoder(resp.Body).Decode(&e)
			return errMsg(fmt.Errorf("%s: %s", action, e.Error))
		}
		return actionDoneMsg{action: action}
	}
}

func poll(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return pollMsg(t) })
}
