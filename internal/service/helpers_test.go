package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/repository"
)

// fakeAudit records appended events in memory.
type fakeAudit struct {
	mu       sync.Mutex
	events   []bank.AuditEvent
	failWith error
}

func (f *fakeAudit) Append(_ context.Context, e bank.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAudit) List(_ context.Context, from, to time.Time, level string) ([]bank.AuditEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bank.AuditEvent, 0, len(f.events))
	for _, e := range f.events {
		if level != "" && e.Level != level {
			continue
		}
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeAudit) last(t *testing.T) bank.AuditEvent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		t.Fatal("no audit events recorded")
	}
	return f.events[len(f.events)-1]
}

// testEnv wires the sub-services over a real flat-file store in a temp dir,
// sharing one session state the way NewService does.
type testEnv struct {
	users  *repository.UserFiles
	audit  *fakeAudit
	auth   *AuthService
	ledger *LedgerService
	admin  *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := repository.NewUserFiles(t.TempDir(), nil)
	if err := users.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	audit := &fakeAudit{}
	rates := repository.NewRatesFile(filepath.Join(t.TempDir(), "rates.txt"))
	state := newSessionState()
	cfg := Config{SigningKey: "test-signing-key", ReceiptsDir: t.TempDir()}
	return &testEnv{
		users:  users,
		audit:  audit,
		auth:   NewAuthService(users, audit, state, cfg, nil),
		ledger: NewLedgerService(users, audit, rates, state, cfg, nil),
		admin:  NewAdminService(users, audit, state, nil),
	}
}

func (e *testEnv) register(t *testing.T, name, password string) {
	t.Helper()
	if err := e.auth.Register(context.Background(), name, password); err != nil {
		t.Fatalf("Register %s: %v", name, err)
	}
}

func (e *testEnv) login(t *testing.T, name, password string) {
	t.Helper()
	if _, err := e.auth.Login(context.Background(), name, password); err != nil {
		t.Fatalf("Login %s: %v", name, err)
	}
}

// mustAccount adds an account for the session user and returns its number.
func (e *testEnv) mustAccount(t *testing.T, currency string) string {
	t.Helper()
	if err := e.ledger.AddAccount(context.Background(), currency); err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	accounts := e.ledger.ListAccounts()
	return accounts[len(accounts)-1].AccountNumber
}

// mustCard adds a card for the session user and returns its number.
func (e *testEnv) mustCard(t *testing.T, expiry, linkedAccount string) string {
	t.Helper()
	if err := e.ledger.AddCard(context.Background(), expiry, linkedAccount); err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	cards := e.ledger.ListCards()
	return cards[len(cards)-1].CardNumber
}

// mustDeposit funds an account of the session user.
func (e *testEnv) mustDeposit(t *testing.T, accountNumber string, cents int64) {
	t.Helper()
	if err := e.ledger.Deposit(context.Background(), accountNumber, cents, "external-ref"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
}

// storedUser reads a user straight from the store, bypassing the session.
func (e *testEnv) storedUser(t *testing.T, name string) bank.User {
	t.Helper()
	u, err := e.users.Load(name)
	if err != nil {
		t.Fatalf("Load %s: %v", name, err)
	}
	return u
}
