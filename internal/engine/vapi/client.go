// Package vapi is a websocket adapter to the hosted voice engine. It
// transports call lifecycle frames; it never interprets media.
package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voxa/internal/engine"
)

var ErrNotActive = errors.New("voice engine session not active")

// wire frame exchanged with the hosted engine
type frame struct {
	Type           string          `json:"type"`
	TranscriptType string          `json:"transcriptType,omitempty"`
	Transcript     string          `json:"transcript,omitempty"`
	Message        string          `json:"message,omitempty"`
	Assistant      json.RawMessage `json:"assistant,omitempty"`
}

type Client struct {
	url       string
	publicKey string
	logger    *zap.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[engine.Event][]engine.Handler
	active   bool

	// test seam
	dial func(url string) (*websocket.Conn, error)
}

func NewClient(url, publicKey string, logger *zap.Logger) *Client {
	return &Client{
		url:       url,
		publicKey: publicKey,
		logger:    logger,
		handlers:  make(map[engine.Event][]engine.Handler),
		dial: func(url string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			return conn, err
		},
	}
}

func (c *Client) On(event engine.Event, handler engine.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

// Start dials the hosted engine and sends the assistant configuration.
// At most one call may be active per client.
func (c *Client) Start(ctx context.Context, cfg engine.AssistantConfig) error {
	if c.publicKey == "" {
		return errors.New("voice engine public key is not configured")
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return errors.New("voice engine session already active")
	}
	c.mu.Unlock()

	conn, err := c.dial(fmt.Sprintf("%s?publicKey=%s", c.url, c.publicKey))
	if err != nil {
		return fmt.Errorf("failed to connect to voice engine: %w", err)
	}

	assistant, err := json.Marshal(cfg)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to encode assistant config: %w", err)
	}
	if err := conn.WriteJSON(frame{Type: "start", Assistant: assistant}); err != nil {
		conn.Close()
		return fmt.Errorf("failed to start voice session: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.active = true
	c.mu.Unlock()

	go c.readPump(conn)
	return nil
}

// Stop ends the active call. Calling Stop on an inactive client returns
// ErrNotActive, which callers are expected to ignore during teardown.
func (c *Client) Stop() error {
	c.mu.Lock()
	conn := c.conn
	active := c.active
	c.conn = nil
	c.active = false
	c.mu.Unlock()

	if !active || conn == nil {
		return ErrNotActive
	}

	// best effort: the session may already be gone server-side
	_ = conn.WriteJSON(frame{Type: "end"})
	return conn.Close()
}

func (c *Client) readPump(conn *websocket.Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			wasActive := c.active && c.conn == conn
			if wasActive {
				c.conn = nil
				c.active = false
			}
			c.mu.Unlock()

			// a read failure after Stop() is expected teardown noise
			if wasActive {
				c.logger.Warn("voice engine connection lost", zap.Error(err))
				c.dispatch(engine.EventError, engine.Payload{Message: err.Error(), Err: err})
				c.dispatch(engine.EventCallEnd, engine.Payload{})
			}
			return
		}
		c.handleFrame(f)
	}
}

func (c *Client) handleFrame(f frame) {
	switch f.Type {
	case "call-start":
		c.dispatch(engine.EventCallStart, engine.Payload{})
	case "call-end":
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
		c.dispatch(engine.EventCallEnd, engine.Payload{})
	case "speech-start":
		c.dispatch(engine.EventSpeechStart, engine.Payload{})
	case "speech-end":
		c.dispatch(engine.EventSpeechEnd, engine.Payload{})
	case "transcript":
		c.dispatch(engine.EventTranscript, engine.Payload{
			Transcript: f.Transcript,
			Final:      f.TranscriptType == "final",
		})
	case "error":
		c.dispatch(engine.EventError, engine.Payload{
			Message: f.Message,
			Err:     errors.New(f.Message),
		})
	default:
		c.dispatch(engine.EventMessage, engine.Payload{Message: f.Message})
	}
}

func (c *Client) dispatch(event engine.Event, payload engine.Payload) {
	c.mu.Lock()
	handlers := append([]engine.Handler(nil), c.handlers[event]...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}
