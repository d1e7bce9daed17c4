// Package engine defines the boundary to the hosted voice-AI engine. The
// engine itself (speech recognition, synthesis, turn-taking) is an opaque
// third-party service; this package only models its call lifecycle.
package engine

import "context"

// Event names delivered by the voice engine during a live call.
type Event string

const (
	EventCallStart   Event = "call-start"
	EventCallEnd     Event = "call-end"
	EventSpeechStart Event = "speech-start"
	EventSpeechEnd   Event = "speech-end"
	EventMessage     Event = "message"
	EventTranscript  Event = "transcript"
	EventError       Event = "error"
)

// Payload carries the data attached to an engine event. Transcript events
// deliver whole-utterance snapshots, not diffs.
type Payload struct {
	Transcript string `json:"transcript,omitempty"`
	Final      bool   `json:"final,omitempty"`
	Message    string `json:"message,omitempty"`
	Err        error  `json:"-"`
}

// Handler receives one engine event.
type Handler func(Payload)

// Message shape the assistant config sends to the engine.
type SystemMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssistantConfig describes the interviewer persona the engine should run.
type AssistantConfig struct {
	Model        string          `json:"model"`
	Provider     string          `json:"provider"`
	Messages     []SystemMessage `json:"messages"`
	FirstMessage string          `json:"firstMessage"`
	VoiceID      string          `json:"voiceId"`
}

// Engine is the opaque voice session client: at most one active call,
// asynchronous unordered callback delivery, genuine possibility of silent
// or abrupt disconnection.
type Engine interface {
	Start(ctx context.Context, cfg AssistantConfig) error
	Stop() error
	On(event Event, handler Handler)
}
