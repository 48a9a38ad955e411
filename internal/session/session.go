// Package session keeps a websocket session to the world server alive and
// feeds every message to a single handler goroutine.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/protocol"
)

// Handler receives decoded server messages. All calls come from the session's
// read goroutine, one at a time. An ACT returned from OnObs is sent before the
// next message is read.
type Handler interface {
	OnWelcome(w protocol.WelcomeMsg)
	OnCatalog(c protocol.CatalogMsg)
	OnObs(o protocol.ObsMsg) *protocol.ActMsg
}

type Config struct {
	WorldWSURL      string
	AgentName       string
	ResumeToken     string
	AuthToken       string
	WorldPreference string

	// Backoff bounds between reconnect attempts.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// Status is a snapshot for introspection.
type Status struct {
	Connected       bool      `json:"connected"`
	AgentID         string    `json:"agent_id,omitempty"`
	WorldID         string    `json:"world_id,omitempty"`
	LastObsTick     uint64    `json:"last_obs_tick"`
	LastConnectedAt time.Time `json:"last_connected_at,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	Reconnects      int       `json:"reconnects"`
}

type Session struct {
	cfg     Config
	handler Handler
	log     zerolog.Logger

	mu          sync.RWMutex
	resumeToken string
	status      Status
}

func New(cfg Config, h Handler, log zerolog.Logger) *Session {
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = 5 * time.Second
	}
	return &Session{
		cfg:         cfg,
		handler:     h,
		log:         log.With().Str("component", "session").Logger(),
		resumeToken: cfg.ResumeToken,
	}
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// ResumeToken is the latest token handed out by the server.
func (s *Session) ResumeToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resumeToken
}

// Run connects and reconnects with exponential backoff until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	backoff := s.cfg.MinBackoff
	for {
		err := s.connectAndReadLoop(ctx)
		if ctx.Err() != nil {
			return nil
		}
		s.mu.Lock()
		s.status.Connected = false
		if err != nil {
			s.status.LastError = err.Error()
		}
		s.status.Reconnects++
		s.mu.Unlock()
		s.log.Warn().Err(err).Dur("backoff", backoff).Msg("world connection lost")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.cfg.MaxBackoff {
			backoff = s.cfg.MaxBackoff
		}
	}
}

func (s *Session) hello() protocol.HelloMsg {
	h := protocol.HelloMsg{
		Type:              protocol.TypeHello,
		ProtocolVersion:   protocol.Version,
		SupportedVersions: protocol.SupportedVersions,
		AgentName:         s.cfg.AgentName,
		Capabilities: protocol.HelloCapabilities{
			DeltaVoxels: true,
			MaxQueue:    64,
		},
		WorldPreference: s.cfg.WorldPreference,
	}
	s.mu.RLock()
	token := strings.TrimSpace(s.resumeToken)
	s.mu.RUnlock()
	if token == "" {
		token = strings.TrimSpace(s.cfg.AuthToken)
	}
	if token != "" {
		h.Auth = &protocol.HelloAuth{Token: token}
	}
	return h
}

func (s *Session) connectAndReadLoop(ctx context.Context) error {
	d := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := d.DialContext(ctx, s.cfg.WorldWSURL, http.Header{})
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	// Wake the blocking read when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(s.hello()); err != nil {
		return err
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			s.log.Debug().Err(err).Msg("undecodable message dropped")
			continue
		}
		if !protocol.IsSupportedVersion(base.ProtocolVersion) {
			s.log.Debug().Str("type", base.Type).Str("version", base.ProtocolVersion).Msg("unsupported protocol version")
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				return fmt.Errorf("welcome: %w", err)
			}
			s.mu.Lock()
			s.resumeToken = w.ResumeToken
			s.status.Connected = true
			s.status.AgentID = w.AgentID
			s.status.WorldID = w.CurrentWorldID
			s.status.LastConnectedAt = time.Now()
			s.status.LastError = ""
			s.mu.Unlock()
			s.log.Info().Str("agent_id", w.AgentID).Str("world", w.CurrentWorldID).Msg("connected")
			s.handler.OnWelcome(w)

		case protocol.TypeCatalog:
			var c protocol.CatalogMsg
			if err := json.Unmarshal(msg, &c); err != nil {
				s.log.Debug().Err(err).Msg("bad catalog dropped")
				continue
			}
			s.handler.OnCatalog(c)

		case protocol.TypeObs:
			var o protocol.ObsMsg
			if err := json.Unmarshal(msg, &o); err != nil {
				s.log.Debug().Err(err).Msg("bad obs dropped")
				continue
			}
			s.mu.Lock()
			s.status.LastObsTick = o.Tick
			if o.WorldID != "" {
				s.status.WorldID = o.WorldID
			}
			s.mu.Unlock()
			act := s.handler.OnObs(o)
			if act == nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(act); err != nil {
				return err
			}

		case protocol.TypeAck:
			var a protocol.AckMsg
			if err := json.Unmarshal(msg, &a); err == nil && !a.Accepted {
				s.log.Debug().Str("ack_for", a.AckFor).Str("code", a.Code).Msg("act rejected")
			}
		}
	}
}
