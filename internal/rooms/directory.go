package rooms

import (
	"sync"

	"github.com/Nalesh18/Collaborative-Canvas/internal/canvas"
)

// Presence is one user's public identity inside a room.
type Presence struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type room struct {
	log      *canvas.Log
	presence map[string]Presence
}

// Directory owns per-room state, provisioned lazily on first reference.
// Rooms live for the lifetime of the process; nothing is persisted and
// nothing crosses a room boundary.
type Directory struct {
	mu    sync.Mutex
	rooms map[string]*room
}

// NewDirectory returns an empty room directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]*room)}
}

func (d *Directory) ensure(name string) *room {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rooms[name]
	if !ok {
		r = &room{log: canvas.NewLog(), presence: make(map[string]Presence)}
		d.rooms[name] = r
	}
	return r
}

// Append records the operation in the named room's log, creating the room if
// needed. It reports whether the log grew (false on dedup or missing type).
func (d *Directory) Append(name string, op canvas.Operation) bool {
	return d.ensure(name).log.Append(op)
}

// History returns a point-in-time copy of the named room's operation log.
func (d *Directory) History(name string) []canvas.Operation {
	return d.ensure(name).log.Snapshot()
}

// ResolveUndoTarget resolves the user's next undoable operation in the room.
func (d *Directory) ResolveUndoTarget(name, userID string) (string, bool) {
	return d.ensure(name).log.ResolveUndoTarget(userID)
}

// ResolveRedoTarget resolves the user's next redoable operation in the room.
func (d *Directory) ResolveRedoTarget(name, userID string) (string, bool) {
	return d.ensure(name).log.ResolveRedoTarget(userID)
}

// SetPresence records or refreshes the session's presence entry in the room.
func (d *Directory) SetPresence(name, sessionID string, entry Presence) {
	r := d.ensure(name)
	d.mu.Lock()
	defer d.mu.Unlock()
	r.presence[sessionID] = entry
}

// ClearPresence removes the session's presence entry from the room.
func (d *Directory) ClearPresence(name, sessionID string) {
	r := d.ensure(name)
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(r.presence, sessionID)
}

// ListPresence returns the room's current presence entries in no particular
// order.
func (d *Directory) ListPresence(name string) []Presence {
	r := d.ensure(name)
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := make([]Presence, 0, len(r.presence))
	for _, entry := range r.presence {
		entries = append(entries, entry)
	}
	return entries
}
