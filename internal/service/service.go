package service

import (
	"context"
	"time"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/logger"
	"github.com/plightick/kursovaya/internal/repository"
)

// Authorization owns the process-wide session and the HTTP token glue.
type Authorization interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, username, password string) error
	ParseToken(accessToken string) (Claims, error)
	Current() SessionInfo
}

// Ledger exposes the commands and projections of a regular user session.
type Ledger interface {
	AddAccount(ctx context.Context, currency string) error
	AddCard(ctx context.Context, expiry, linkedAccount string) error
	AddFavorite(ctx context.Context, name, toCard, note string) error
	Transfer(ctx context.Context, fromAccount, toCard string, cents int64, note, category string) error
	PayFavorite(ctx context.Context, favName, fromAccount string, cents int64, category string) error
	Deposit(ctx context.Context, accountNumber string, cents int64, externalAccount string) error
	ClearNotifications(ctx context.Context) error

	ListAccounts() []bank.Account
	ListCards() []bank.Card
	ListHistory() []bank.Transaction
	ListFavorites() []bank.FavoritePayment
	ListNotifications() []string
	ExpenseStats() ExpenseStats
	ReceiptFor(transactionID string) (Receipt, error)
	SaveReceiptToFile(ctx context.Context, transactionID, path string) (string, error)
	DownloadReceipt(ctx context.Context, transactionID string) (string, error)
	IsCardExpired(expiry string) bool
	RatesText() string
}

// Admin exposes the administrator commands and cross-user projections.
type Admin interface {
	ListUsers() ([]string, error)
	SearchUsers(query string) ([]string, error)
	SortUsers(sortBy string) ([]string, error)
	AllUsersInfo(sortBy string) ([]UserInfo, error)
	UserAccounts(username string) ([]bank.Account, error)
	UserCards(username string) ([]bank.Card, error)
	ListAllTransfers(query string) ([]TransferRecord, error)
	SortTransfers(sortBy string) ([]TransferRecord, error)
	CancelTransfer(ctx context.Context, transactionID, reason string) error
	ClearAllUsers(ctx context.Context) error
}

// AuditLog exposes the append-only command-outcome log with filtering.
type AuditLog interface {
	List(ctx context.Context, f LogFilter) ([]bank.AuditEvent, error)
}

// LogFilter narrows audit listings by time range and level.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Level string    // "", "INFO", "ERROR"
}

// Config carries the service-level settings read from configuration.
type Config struct {
	SigningKey  string
	TokenTTL    time.Duration
	ReceiptsDir string
}

// Service aggregates all sub-services behind one wiring point.
type Service struct {
	Authorization
	Ledger
	Admin
	AuditLog
}

func NewService(repos *repository.Repository, cfg Config, log *logger.Logger) *Service {
	state := newSessionState()
	return &Service{
		Authorization: NewAuthService(repos.Users, repos.Audit, state, cfg, log),
		Ledger:        NewLedgerService(repos.Users, repos.Audit, repos.Rates, state, cfg, log),
		Admin:         NewAdminService(repos.Users, repos.Audit, state, log),
		AuditLog:      NewAuditLogService(repos.Audit),
	}
}

// recordOutcome appends the audit event every command emits: INFO with the
// success message, or ERROR carrying the failure message. Audit failures are
// logged and swallowed so they never fail the command itself.
func recordOutcome(ctx context.Context, audit repository.Audit, log *logger.Logger, command, username string, cmdErr error, okMsg string) {
	ev := bank.AuditEvent{
		Level:    bank.AuditInfo,
		Command:  command,
		Username: username,
		Message:  okMsg,
	}
	if cmdErr != nil {
		ev.Level = bank.AuditError
		ev.Message = cmdErr.Error()
	}
	if err := audit.Append(ctx, ev); err != nil && log != nil {
		log.Warnw("audit append failed", "command", command, "err", err)
	}
}
