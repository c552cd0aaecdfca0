package server

import "encoding/json"

// Inbound message kinds.
const (
	MessageJoin     = "join"
	MessageOp       = "op"
	MessageUndo     = "undo"
	MessageRedo     = "redo"
	MessageCursor   = "cursor"
	MessagePing     = "ping"
	MessagePresence = "presence"
)

// Outbound event kinds.
const (
	EventJoined   = "joined"
	EventOp       = "op"
	EventPresence = "presence"
	EventCursor   = "cursor"
	EventPong     = "pong"
)

// Envelope is the wire frame shared by inbound messages and outbound events.
// Payloads stay raw until the handler for the given type interprets them.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type joinRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Room  string `json:"room"`
}

type presenceUpdate struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
