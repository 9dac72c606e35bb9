package repository

import (
	"context"
	"database/sql"
	"time"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/logger"
)

// Users is the flat-file user store: one whole-file overwrite per save.
type Users interface {
	EnsureRoot() error
	Save(u bank.User) error
	Load(username string) (bank.User, error)
	Exists(username string) bool
	ListUsernames() ([]string, error)
	LoadAll() ([]bank.User, error)
	RemoveAll() error
}

// Audit is the append-only command-outcome log.
type Audit interface {
	Append(ctx context.Context, e bank.AuditEvent) error
	List(ctx context.Context, from, to time.Time, level string) ([]bank.AuditEvent, error)
}

// Rates serves the static exchange-rate text resource.
type Rates interface {
	Text() (string, error)
}

type Repository struct {
	Users Users
	Audit Audit
	Rates Rates
}

func NewRepository(db *sql.DB, storageRoot, ratesPath string, log *logger.Logger) *Repository {
	return &Repository{
		Users: NewUserFiles(storageRoot, log),
		Audit: NewAuditSQLite(db),
		Rates: NewRatesFile(ratesPath),
	}
}
