package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"voxelpilot.ai/internal/agent"
	"voxelpilot.ai/internal/config"
	"voxelpilot.ai/internal/controlapi"
	"voxelpilot.ai/internal/logging"
	"voxelpilot.ai/internal/session"
	"voxelpilot.ai/internal/trace"
	"voxelpilot.ai/internal/waypoint"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pilot:", err)
		os.Exit(1)
	}
}

// run wires the pilot and blocks until ctx is done or a component fails.
// Everything opened here is closed before it returns.
func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pilot", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to pilot.yaml or pilot.toml (optional)")
		url        = fs.String("url", "", "world ws url (overrides config)")
		name       = fs.String("name", "", "agent name (overrides config)")
		listen     = fs.String("listen", "", "control API listen address, empty string in config disables it")
		logLevel   = fs.String("log_level", "", "debug, info, warn or error (overrides config)")
		noTrace    = fs.Bool("no_trace", false, "disable the decision trace")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", *configPath, err)
		}
		cfg = loaded
	}
	if v := strings.TrimSpace(*url); v != "" {
		cfg.WorldURL = v
	}
	if v := strings.TrimSpace(*name); v != "" {
		cfg.AgentName = v
	}
	if v := strings.TrimSpace(*listen); v != "" {
		cfg.ControlListen = v
	}
	if v := strings.TrimSpace(*logLevel); v != "" {
		cfg.LogLevel = v
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = strings.TrimSpace(os.Getenv("VP_AUTH_TOKEN"))
	}

	logger := logging.New("pilot", cfg.LogLevel, out)

	if cfg.ResumeToken == "" && cfg.StateFile != "" {
		st, err := session.LoadState(cfg.StateFile, cfg.AgentName)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.StateFile).Msg("ignoring session state")
		} else if st.ResumeToken != "" {
			cfg.ResumeToken = st.ResumeToken
			logger.Info().Str("agent_id", st.AgentID).Time("last_connected_at", st.ConnectedTime()).Msg("resuming previous session")
		}
	}

	var store *waypoint.Store
	if cfg.WaypointDB != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.WaypointDB), 0o755); err != nil {
			return fmt.Errorf("create waypoint dir: %w", err)
		}
		s, err := waypoint.Open(cfg.WaypointDB)
		if err != nil {
			return fmt.Errorf("open waypoints %s: %w", cfg.WaypointDB, err)
		}
		defer func() {
			if err := s.Close(); err != nil {
				logger.Warn().Err(err).Msg("close waypoints")
			}
		}()
		store = s
	}

	var tr *trace.Writer
	if cfg.TraceDir != "" && !*noTrace {
		tr = trace.NewWriter(cfg.TraceDir, cfg.AgentName)
		defer func() {
			if err := tr.Close(); err != nil {
				logger.Warn().Err(err).Msg("close trace")
			}
		}()
	}

	a, err := agent.New(cfg, logger, store, tr)
	if err != nil {
		return fmt.Errorf("build agent: %w", err)
	}

	sess := session.New(session.Config{
		WorldWSURL:      cfg.WorldURL,
		AgentName:       cfg.AgentName,
		ResumeToken:     cfg.ResumeToken,
		AuthToken:       cfg.AuthToken,
		WorldPreference: cfg.WorldPreference,
	}, a, logger)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	errCh := make(chan error, 2)
	running := 1
	go func() { errCh <- sess.Run(ctx) }()
	if cfg.ControlListen != "" {
		running++
		api := controlapi.New(controlapi.Config{Listen: cfg.ControlListen}, a, sess, logger)
		go func() { errCh <- api.Start(ctx) }()
	}

	var runErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("stopped")
			if runErr == nil {
				runErr = err
			}
			stop()
		}
	}
	if cfg.StateFile != "" {
		if err := session.SaveState(cfg.StateFile, cfg.AgentName, sess.Snapshot()); err != nil {
			logger.Warn().Err(err).Str("path", cfg.StateFile).Msg("save session state")
		}
	}
	return runErr
}
