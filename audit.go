package kursovaya

import "time"

// Audit event levels.
const (
	AuditInfo  = "INFO"
	AuditError = "ERROR"
)

// AuditEvent is one append-only record of a command outcome. The audit log
// lives outside the per-user ledger files and carries the informational and
// error notifications commands emit.
type AuditEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Level      string    `json:"level"`   // INFO | ERROR
	Command    string    `json:"command"` // e.g. "transfer", "login"
	Username   string    `json:"username,omitempty"`
	Message    string    `json:"message"`
}
