package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	bank "github.com/plightick/kursovaya"
	"github.com/google/uuid"
)

type AuditSQLite struct {
	db *sql.DB
}

func NewAuditSQLite(db *sql.DB) *AuditSQLite { return &AuditSQLite{db: db} }

// Ensure implementation of Audit interface at compile time.
var _ Audit = (*AuditSQLite)(nil)

const sqliteTimeLayout = "2006-01-02 15:04:05"

// Append inserts a new audit event. Missing EventID or OccurredAt are set.
func (r *AuditSQLite) Append(ctx context.Context, e bank.AuditEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, occurred_at, level, command, username, message)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.Format(sqliteTimeLayout),
		strings.ToUpper(strings.TrimSpace(e.Level)),
		e.Command,
		e.Username,
		e.Message,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or level,
// ordered by occurrence time ascending.
func (r *AuditSQLite) List(ctx context.Context, from, to time.Time, level string) ([]bank.AuditEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}
	if level = strings.ToUpper(strings.TrimSpace(level)); level != "" {
		conds = append(conds, "level = ?")
		args = append(args, level)
	}

	q := `SELECT id, occurred_at, level, command, username, message FROM audit_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]bank.AuditEvent, 0, 64)
	for rows.Next() {
		var (
			ev bank.AuditEvent
			ts string
		)
		if err := rows.Scan(&ev.EventID, &ts, &ev.Level, &ev.Command, &ev.Username, &ev.Message); err != nil {
			return nil, err
		}
		if t, err := time.Parse(sqliteTimeLayout, ts); err == nil {
			ev.OccurredAt = t.UTC()
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
