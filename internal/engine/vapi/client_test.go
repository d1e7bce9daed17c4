package vapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voxa/internal/engine"
)

var upgrader = websocket.Upgrader{}

// fakeEngine runs a websocket endpoint that records the start frame and
// replays a scripted sequence of event frames.
func fakeEngine(t *testing.T, script []frame, gotStart *frame) *httptest.Server {
	t.Helper()
	var once sync.Once
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		var start frame
		if err := conn.ReadJSON(&start); err != nil {
			t.Errorf("read start frame: %v", err)
			return
		}
		once.Do(func() { *gotStart = start })

		for _, f := range script {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		// hold the connection open until the client closes it
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func newTestClient(serverURL string) *Client {
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http")
	return NewClient(wsURL, "pk_test", zap.NewNop())
}

func waitFor(t *testing.T, ch <-chan engine.Payload) engine.Payload {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine event")
		return engine.Payload{}
	}
}

func TestClientStartSendsAssistantConfig(t *testing.T) {
	var gotStart frame
	srv := fakeEngine(t, []frame{{Type: "call-start"}}, &gotStart)
	defer srv.Close()

	client := newTestClient(srv.URL)
	started := make(chan engine.Payload, 1)
	client.On(engine.EventCallStart, func(p engine.Payload) { started <- p })

	cfg := engine.AssistantConfig{
		Model:        "gemini-2.5-flash",
		Provider:     "gemini",
		FirstMessage: "Hello, shall we begin?",
	}
	if err := client.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer client.Stop()

	// the server replays call-start only after reading the start frame,
	// so waiting on it guarantees gotStart is populated
	waitFor(t, started)

	if gotStart.Type != "start" {
		t.Fatalf("expected start frame, got %q", gotStart.Type)
	}
	var sent engine.AssistantConfig
	if err := json.Unmarshal(gotStart.Assistant, &sent); err != nil {
		t.Fatalf("assistant config did not round-trip: %v", err)
	}
	if sent.Model != "gemini-2.5-flash" || sent.FirstMessage != "Hello, shall we begin?" {
		t.Fatalf("unexpected assistant config: %+v", sent)
	}
}

func TestClientDispatchesTranscriptFrames(t *testing.T) {
	var gotStart frame
	srv := fakeEngine(t, []frame{
		{Type: "call-start"},
		{Type: "transcript", TranscriptType: "partial", Transcript: "tell me"},
		{Type: "transcript", TranscriptType: "final", Transcript: "tell me about yourself"},
	}, &gotStart)
	defer srv.Close()

	client := newTestClient(srv.URL)
	transcripts := make(chan engine.Payload, 4)
	client.On(engine.EventTranscript, func(p engine.Payload) { transcripts <- p })

	if err := client.Start(context.Background(), engine.AssistantConfig{}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer client.Stop()

	first := waitFor(t, transcripts)
	if first.Final || first.Transcript != "tell me" {
		t.Fatalf("unexpected partial transcript: %+v", first)
	}
	second := waitFor(t, transcripts)
	if !second.Final || second.Transcript != "tell me about yourself" {
		t.Fatalf("unexpected final transcript: %+v", second)
	}
}

func TestClientDispatchesErrorAndCallEnd(t *testing.T) {
	var gotStart frame
	srv := fakeEngine(t, []frame{
		{Type: "error", Message: "engine exploded"},
		{Type: "call-end"},
	}, &gotStart)
	defer srv.Close()

	client := newTestClient(srv.URL)
	errs := make(chan engine.Payload, 1)
	ends := make(chan engine.Payload, 1)
	client.On(engine.EventError, func(p engine.Payload) { errs <- p })
	client.On(engine.EventCallEnd, func(p engine.Payload) { ends <- p })

	if err := client.Start(context.Background(), engine.AssistantConfig{}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer client.Stop()

	got := waitFor(t, errs)
	if got.Err == nil || got.Message != "engine exploded" {
		t.Fatalf("unexpected error payload: %+v", got)
	}
	waitFor(t, ends)
}

func TestClientStopWithoutStart(t *testing.T) {
	client := NewClient("ws://unused", "pk_test", zap.NewNop())
	if err := client.Stop(); err != ErrNotActive {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
}

func TestClientStartRequiresPublicKey(t *testing.T) {
	client := NewClient("ws://unused", "", zap.NewNop())
	if err := client.Start(context.Background(), engine.AssistantConfig{}); err == nil {
		t.Fatal("expected error when public key is missing")
	}
}
