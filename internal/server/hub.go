package server

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/Nalesh18/Collaborative-Canvas/internal/canvas"
	"github.com/Nalesh18/Collaborative-Canvas/internal/rooms"
	"go.uber.org/zap"
)

const (
	defaultRoom      = "global"
	defaultUserColor = "#e63946"
)

var errMissingDirectory = errors.New("room directory dependency required")

// Sender delivers one outbound event to a connected peer. Implementations
// must not block; a peer that cannot keep up returns an error and the event
// is dropped for that recipient only.
type Sender interface {
	Send(event Envelope) error
}

// Session is the server-side state bound to one live connection. The id is
// assigned on connect and stable until disconnect; Room stays empty until a
// join message is processed, and no other message kind (except ping) is acted
// on before that.
type Session struct {
	ID     string
	Name   string
	Color  string
	Room   string
	sender Sender
}

// HubConfig carries the Hub's dependencies.
type HubConfig struct {
	Directory  *rooms.Directory
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Hub owns the live session table, interprets inbound protocol messages, and
// fans resulting events out to the sessions bound to the affected room. All
// message handling is serialized behind one mutex so undo/redo resolution
// always sees a stable log.
type Hub struct {
	mu        sync.Mutex
	sessions  map[*Session]struct{}
	directory *rooms.Directory
	ids       IDProvider
	logger    *zap.Logger
}

// NewHub constructs a Hub. The directory is required; the id provider and
// logger default to random UUIDs and a no-op logger.
func NewHub(cfg HubConfig) (*Hub, error) {
	if cfg.Directory == nil {
		return nil, errMissingDirectory
	}
	ids := cfg.IDProvider
	if ids == nil {
		ids = NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions:  make(map[*Session]struct{}),
		directory: cfg.Directory,
		ids:       ids,
		logger:    logger,
	}, nil
}

// Connect registers a new unjoined session for the given peer and returns it.
func (h *Hub) Connect(sender Sender) *Session {
	session := &Session{ID: h.ids.NewID(), sender: sender}
	h.mu.Lock()
	h.sessions[session] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("client connected", zap.String("session_id", session.ID))
	return session
}

// Disconnect removes the session. If it had joined a room its presence entry
// is cleared and the remaining members receive a refreshed presence list;
// sessions that never joined leave no trace.
func (h *Hub) Disconnect(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[session]; !ok {
		return
	}
	delete(h.sessions, session)
	if session.Room == "" {
		h.logger.Info("client disconnected", zap.String("session_id", session.ID))
		return
	}
	h.directory.ClearPresence(session.Room, session.ID)
	h.broadcast(session.Room, EventPresence, h.directory.ListPresence(session.Room), nil)
	h.logger.Info("client disconnected",
		zap.String("session_id", session.ID),
		zap.String("room", session.Room))
}

// HandleMessage interprets one inbound frame from the session's connection.
// Unparsable frames and unknown message kinds are dropped without reply.
func (h *Hub) HandleMessage(session *Session, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch envelope.Type {
	case MessageJoin:
		h.handleJoin(session, envelope.Payload)
	case MessageOp:
		h.handleOp(session, envelope.Payload)
	case MessageUndo:
		h.handleUndo(session)
	case MessageRedo:
		h.handleRedo(session)
	case MessageCursor:
		h.handleCursor(session, envelope.Payload)
	case MessagePing:
		h.sendTo(session, Envelope{Type: EventPong, Payload: envelope.Payload})
	case MessagePresence:
		h.handlePresence(session, envelope.Payload)
	}
}

func (h *Hub) handleJoin(session *Session, payload json.RawMessage) {
	var request joinRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &request); err != nil {
			return
		}
	}

	session.Name = request.Name
	if session.Name == "" {
		session.Name = "User-" + shortID(session.ID)
	}
	session.Color = request.Color
	if session.Color == "" {
		session.Color = defaultUserColor
	}
	session.Room = request.Room
	if session.Room == "" {
		session.Room = defaultRoom
	}

	h.directory.SetPresence(session.Room, session.ID, presenceOf(session))
	h.logger.Info("client joined room",
		zap.String("session_id", session.ID),
		zap.String("room", session.Room))

	h.sendEvent(session, EventJoined, joinedEvent{
		UserID: session.ID,
		Name:   session.Name,
		Color:  session.Color,
		Users:  h.directory.ListPresence(session.Room),
		State:  h.directory.History(session.Room),
	})
	h.broadcast(session.Room, EventPresence, h.directory.ListPresence(session.Room), nil)
}

type joinedEvent struct {
	UserID string             `json:"userId"`
	Name   string             `json:"name"`
	Color  string             `json:"color"`
	Users  []rooms.Presence   `json:"users"`
	State  []canvas.Operation `json:"state"`
}

func (h *Hub) handleOp(session *Session, payload json.RawMessage) {
	if session.Room == "" || len(payload) == 0 || string(payload) == "null" {
		return
	}
	var op canvas.Operation
	if err := json.Unmarshal(payload, &op); err != nil {
		return
	}
	if op.ID == "" {
		op.ID = h.ids.NewID()
	}
	// Provenance is never client-trusted.
	op.UserID = session.ID

	if op.Type == canvas.OpTypeStrokePart {
		// Live preview fragments are relayed, never recorded.
		h.broadcast(session.Room, EventOp, op, session)
		return
	}
	h.directory.Append(session.Room, op)
	h.broadcast(session.Room, EventOp, op, nil)
}

func (h *Hub) handleUndo(session *Session) {
	if session.Room == "" {
		return
	}
	targetID, ok := h.directory.ResolveUndoTarget(session.Room, session.ID)
	if !ok {
		return
	}
	h.appendResolution(session, canvas.OpTypeUndo, targetID)
}

func (h *Hub) handleRedo(session *Session) {
	if session.Room == "" {
		return
	}
	targetID, ok := h.directory.ResolveRedoTarget(session.Room, session.ID)
	if !ok {
		return
	}
	h.appendResolution(session, canvas.OpTypeRedo, targetID)
}

func (h *Hub) appendResolution(session *Session, opType, targetID string) {
	op := canvas.Operation{
		ID:      h.ids.NewID(),
		Type:    opType,
		UserID:  session.ID,
		Payload: canvas.TargetRef(targetID),
	}
	h.directory.Append(session.Room, op)
	h.broadcast(session.Room, EventOp, op, nil)
}

func (h *Hub) handleCursor(session *Session, payload json.RawMessage) {
	if session.Room == "" {
		return
	}
	cursor := make(map[string]any)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cursor); err != nil {
			return
		}
	}
	// Identity fields come from the session, whatever the client sent.
	cursor["userId"] = session.ID
	cursor["color"] = session.Color
	cursor["name"] = session.Name
	h.broadcast(session.Room, EventCursor, cursor, session)
}

func (h *Hub) handlePresence(session *Session, payload json.RawMessage) {
	if session.Room == "" {
		return
	}
	var update presenceUpdate
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &update); err != nil {
			return
		}
	}
	if update.Name != "" {
		session.Name = update.Name
	}
	if update.Color != "" {
		session.Color = update.Color
	}
	h.directory.SetPresence(session.Room, session.ID, presenceOf(session))
	h.broadcast(session.Room, EventPresence, h.directory.ListPresence(session.Room), nil)
}

// broadcast sends the event to every session currently bound to the room,
// skipping except when given. A failing recipient is logged and skipped so a
// bad connection never aborts the fan-out. Callers must hold h.mu.
func (h *Hub) broadcast(roomName, eventType string, payload any, except *Session) {
	event, err := newEvent(eventType, payload)
	if err != nil {
		h.logger.Error("event encoding failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	for session := range h.sessions {
		if session.Room != roomName || session == except {
			continue
		}
		h.sendTo(session, event)
	}
}

func (h *Hub) sendEvent(session *Session, eventType string, payload any) {
	event, err := newEvent(eventType, payload)
	if err != nil {
		h.logger.Error("event encoding failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	h.sendTo(session, event)
}

func (h *Hub) sendTo(session *Session, event Envelope) {
	if err := session.sender.Send(event); err != nil {
		h.logger.Warn("send failed",
			zap.String("session_id", session.ID),
			zap.String("event", event.Type),
			zap.Error(err))
	}
}

func newEvent(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Payload: raw}, nil
}

func presenceOf(session *Session) rooms.Presence {
	return rooms.Presence{ID: session.ID, Name: session.Name, Color: session.Color}
}

func shortID(id string) string {
	if len(id) > 4 {
		return id[:4]
	}
	return id
}
