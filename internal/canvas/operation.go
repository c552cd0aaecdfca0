package canvas

import "encoding/json"

// Operation kinds recorded in a room log or relayed as previews.
const (
	OpTypeStroke     = "stroke"
	OpTypeShape      = "shape"
	OpTypeImage      = "image"
	OpTypeText       = "text"
	OpTypeClear      = "clear"
	OpTypeClearUser  = "clear-user"
	OpTypeUndo       = "undo"
	OpTypeRedo       = "redo"
	OpTypeStrokePart = "stroke-part"
)

// Operation is one recorded user action. The payload is opaque to the sync
// engine except for the undo/redo target reference.
type Operation struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	UserID  string          `json:"userId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type targetPayload struct {
	Target string `json:"target"`
}

// Target returns the operation id referenced by an undo or redo payload, or
// an empty string when the payload carries none.
func (op Operation) Target() string {
	if len(op.Payload) == 0 {
		return ""
	}
	var ref targetPayload
	if err := json.Unmarshal(op.Payload, &ref); err != nil {
		return ""
	}
	return ref.Target
}

// IsDrawable reports whether the operation places content on the canvas and
// is therefore eligible for undo.
func (op Operation) IsDrawable() bool {
	switch op.Type {
	case OpTypeStroke, OpTypeShape, OpTypeImage, OpTypeText:
		return true
	default:
		return false
	}
}

// TargetRef marshals an undo/redo payload referencing the given operation id.
func TargetRef(targetID string) json.RawMessage {
	raw, err := json.Marshal(targetPayload{Target: targetID})
	if err != nil {
		return nil
	}
	return raw
}
