package service

import (
	"os"
	"path/filepath"
	"testing"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/repository"
)

func newResolveStore(t *testing.T) *repository.UserFiles {
	t.Helper()
	r := repository.NewUserFiles(t.TempDir(), nil)
	if err := r.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	return r
}

func saveUser(t *testing.T, r *repository.UserFiles, u bank.User) {
	t.Helper()
	if err := r.Save(u); err != nil {
		t.Fatalf("Save %s: %v", u.Username, err)
	}
}

func TestAdjustRecipientBalanceByAccount(t *testing.T) {
	r := newResolveStore(t)
	saveUser(t, r, bank.User{
		Username: "bob",
		Accounts: []bank.Account{{AccountNumber: "ACC1", BalanceCents: 100}},
	})

	owner, ok := adjustRecipientBalance(r, nil, "ACC1", 50)
	if !ok || owner != "bob" {
		t.Fatalf("result = %q, %v", owner, ok)
	}
	u, err := r.Load("bob")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := u.Accounts[0].BalanceCents; got != 150 {
		t.Errorf("balance = %d, want 150", got)
	}
}

func TestAdjustRecipientBalanceByCard(t *testing.T) {
	r := newResolveStore(t)
	saveUser(t, r, bank.User{
		Username: "bob",
		Accounts: []bank.Account{{AccountNumber: "ACC1", BalanceCents: 0}},
		Cards:    []bank.Card{{CardNumber: "CARD1", LinkedAccount: "ACC1"}},
	})

	owner, ok := adjustRecipientBalance(r, nil, "CARD1", 700)
	if !ok || owner != "bob" {
		t.Fatalf("result = %q, %v", owner, ok)
	}
	u, _ := r.Load("bob")
	if got := u.Accounts[0].BalanceCents; got != 700 {
		t.Errorf("balance = %d, want 700", got)
	}
}

func TestAdjustRecipientBalanceClampsAtZero(t *testing.T) {
	r := newResolveStore(t)
	saveUser(t, r, bank.User{
		Username: "bob",
		Accounts: []bank.Account{{AccountNumber: "ACC1", BalanceCents: 300}},
	})

	if _, ok := adjustRecipientBalance(r, nil, "ACC1", -500); !ok {
		t.Fatal("adjustment reported no change")
	}
	u, _ := r.Load("bob")
	if got := u.Accounts[0].BalanceCents; got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
}

func TestAdjustRecipientBalanceNoMatch(t *testing.T) {
	r := newResolveStore(t)
	saveUser(t, r, bank.User{
		Username: "bob",
		Accounts: []bank.Account{{AccountNumber: "ACC1", BalanceCents: 300}},
	})

	owner, ok := adjustRecipientBalance(r, nil, "UNKNOWN", 100)
	if ok || owner != "" {
		t.Fatalf("result = %q, %v", owner, ok)
	}
	u, _ := r.Load("bob")
	if got := u.Accounts[0].BalanceCents; got != 300 {
		t.Errorf("balance = %d, want 300", got)
	}
}

func TestAdjustRecipientBalanceFirstMatchWins(t *testing.T) {
	r := newResolveStore(t)
	// Both users carry the destination; the scan runs in listing order and
	// stops at the first owner.
	saveUser(t, r, bank.User{
		Username: "alice",
		Accounts: []bank.Account{{AccountNumber: "DUP", BalanceCents: 0}},
	})
	saveUser(t, r, bank.User{
		Username: "zoe",
		Accounts: []bank.Account{{AccountNumber: "DUP", BalanceCents: 0}},
	})

	owner, ok := adjustRecipientBalance(r, nil, "DUP", 100)
	if !ok || owner != "alice" {
		t.Fatalf("result = %q, %v", owner, ok)
	}
	zoe, _ := r.Load("zoe")
	if got := zoe.Accounts[0].BalanceCents; got != 0 {
		t.Errorf("second owner balance = %d, want 0", got)
	}
}

func TestAdjustRecipientBalanceSkipsUnreadableUsers(t *testing.T) {
	// A directory with the record extension sorts first and fails to load;
	// the scan must carry on to the valid match.
	root := t.TempDir()
	r := repository.NewUserFiles(root, nil)
	if err := r.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "aaa.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	saveUser(t, r, bank.User{
		Username: "bob",
		Accounts: []bank.Account{{AccountNumber: "ACC1", BalanceCents: 0}},
	})

	owner, ok := adjustRecipientBalance(r, nil, "ACC1", 100)
	if !ok || owner != "bob" {
		t.Fatalf("result = %q, %v", owner, ok)
	}
}
