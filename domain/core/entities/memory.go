package entities

import "time"

// Message is a single conversational message a memory is derived from.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// Memory is a stored fact extracted from conversation, owned by at least
// one of user, agent or run.
type Memory struct {
	ID        string         `json:"id"`
	Content   string         `json:"memory"`
	UserID    string         `json:"user_id,omitempty"`
	AgentID   string         `json:"agent_id,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Score     *float64       `json:"score,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// Relation is a graph triple extracted alongside memories.
type Relation struct {
	Source       string `json:"source"`
	Relationship string `json:"relationship"`
	Target       string `json:"target"`
}

// History event types.
const (
	HistoryEventAdd    = "ADD"
	HistoryEventUpdate = "UPDATE"
	HistoryEventDelete = "DELETE"
)

// HistoryEntry records one change to a memory.
type HistoryEntry struct {
	ID            string    `json:"id"`
	MemoryID      string    `json:"memory_id"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
	Event         string    `json:"event"`
	CreatedAt     time.Time `json:"created_at"`
}
