package service

import (
	"context"
	"errors"
	"strings"
	"time"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/repository"
)

// AuditLogService exposes the append-only command-outcome log.
type AuditLogService struct {
	audit repository.Audit
}

func NewAuditLogService(audit repository.Audit) *AuditLogService {
	return &AuditLogService{audit: audit}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// List returns audit events matching the filter, oldest first.
func (s *AuditLogService) List(ctx context.Context, f LogFilter) ([]bank.AuditEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.audit.List(ctx, from, to, strings.ToUpper(strings.TrimSpace(f.Level)))
}
