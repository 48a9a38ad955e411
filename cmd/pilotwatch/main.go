package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"voxelpilot.ai/internal/tui/watch"
)

func main() {
	apiURL := flag.String("api-url", envOr("VP_API_URL", "http://127.0.0.1:8091"), "pilot control API URL")
	interval := flag.Duration("interval", time.Second, "poll interval")
	flag.Parse()

	m := watch.New(*apiURL, *interval)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
