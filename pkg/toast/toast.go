package toast

// Level classifies a toast for display styling.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Toast is a transient notification record. The store treats Title,
// Description, Action and Data as opaque display payload; only ID, Open and
// list position carry store semantics.
type Toast struct {
	ID          string         `json:"id"`
	Level       Level          `json:"level,omitempty"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Action      any            `json:"action,omitempty"`
	Open        bool           `json:"open"`
	Data        map[string]any `json:"data,omitempty"`
}

// Payload carries the caller-supplied fields of a new toast. The store
// assigns the ID and sets Open.
type Payload struct {
	Level       Level
	Title       string
	Description string
	Action      any
	Data        map[string]any
}

// Patch describes a partial update. Nil pointer fields are left untouched;
// Data entries are merged key-wise. A non-nil Action replaces the existing
// one.
type Patch struct {
	Level       *Level
	Title       *string
	Description *string
	Action      any
	Open        *bool
	Data        map[string]any
}
