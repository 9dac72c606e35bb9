package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/logger"
	"github.com/plightick/kursovaya/internal/repository"
)

// LedgerService implements the regular-user commands: every mutating command
// is a full load-mutate-save cycle over the session user's flat file, with
// cross-user effects applied as separate whole-file overwrites. There is no
// atomicity between the sender and recipient writes; a crash in between
// leaves money debited but not credited (accepted limitation of the format).
type LedgerService struct {
	users repository.Users
	audit repository.Audit
	rates repository.Rates
	state *sessionState
	cfg   Config
	log   *logger.Logger
}

func NewLedgerService(users repository.Users, audit repository.Audit, rates repository.Rates, state *sessionState, cfg Config, log *logger.Logger) *LedgerService {
	return &LedgerService{users: users, audit: audit, rates: rates, state: state, cfg: cfg, log: log}
}

// saveCurrent persists the session user snapshot. Callers hold the lock.
func (s *LedgerService) saveCurrent() error {
	u, err := s.state.regularUser()
	if err != nil {
		return err
	}
	return s.users.Save(*u)
}

// AddAccount appends a new zero-balance account with a generated number.
func (s *LedgerService) AddAccount(ctx context.Context, currency string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	err := s.addAccount(currency)
	recordOutcome(ctx, s.audit, s.log, "addAccount", s.state.info().Username, err, "account added")
	return err
}

func (s *LedgerService) addAccount(currency string) error {
	u, err := s.state.regularUser()
	if err != nil {
		return err
	}
	u.Accounts = append(u.Accounts, bank.Account{
		AccountNumber: bank.NumericID(bank.AccountNumberDigits),
		Currency:      currency,
		BalanceCents:  0,
	})
	return s.saveCurrent()
}

// AddCard appends a card linked to one of the session user's own accounts.
// The holder name is always the session username, never caller-supplied.
func (s *LedgerService) AddCard(ctx context.Context, expiry, linkedAccount string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	err := s.addCard(expiry, linkedAccount)
	recordOutcome(ctx, s.audit, s.log, "addCard", s.state.info().Username, err, "card added")
	return err
}

func (s *LedgerService) addCard(expiry, linkedAccount string) error {
	u, err := s.state.regularUser()
	if err != nil {
		return err
	}
	if u.FindAccount(linkedAccount) == nil {
		return bank.NewValidationError("no such account")
	}
	u.Cards = append(u.Cards, bank.Card{
		CardNumber:    bank.NumericID(bank.CardNumberDigits),
		HolderName:    u.Username,
		Expiry:        expiry,
		LinkedAccount: linkedAccount,
	})
	return s.saveCurrent()
}

// AddFavorite appends a favorite payment template. The destination is not
// checked for existence.
func (s *LedgerService) AddFavorite(ctx context.Context, name, toCard, note string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	err := s.addFavorite(name, toCard, note)
	recordOutcome(ctx, s.audit, s.log, "addFavorite", s.state.info().Username, err, "favorite payment added")
	return err
}

func (s *LedgerService) addFavorite(name, toCard, note string) error {
	u, err := s.state.regularUser()
	if err != nil {
		return err
	}
	u.Favorites = append(u.Favorites, bank.FavoritePayment{Name: name, ToCard: toCard, Note: note})
	return s.saveCurrent()
}

// Transfer debits an owned source account, appends a completed transaction
// to the sender's history and persists the sender; the recipient is then
// resolved and credited as an independent write. The transfer succeeds even
// when no recipient is found - the debit is never rolled back.
func (s *LedgerService) Transfer(ctx context.Context, fromAccount, toCard string, cents int64, note, category string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	okMsg, err := s.transfer(fromAccount, toCard, cents, note, category)
	recordOutcome(ctx, s.audit, s.log, "transfer", s.state.info().Username, err, okMsg)
	return err
}

func (s *LedgerService) transfer(fromAccount, toCard string, cents int64, note, category string) (string, error) {
	u, err := s.state.regularUser()
	if err != nil {
		return "", err
	}
	acc := u.FindAccount(fromAccount)
	if acc == nil {
		return "", bank.NewValidationError("no such account")
	}
	if cents <= 0 {
		return "", bank.NewValidationError("amount must be positive")
	}
	if acc.BalanceCents < cents {
		return "", bank.NewValidationError("insufficient funds")
	}
	acc.BalanceCents -= cents

	if category == "" {
		category = bank.CategoryOther
	}
	u.History = append(u.History, bank.Transaction{
		ID:          bank.NumericID(bank.TransactionNumberDigits),
		FromAccount: fromAccount,
		ToCard:      toCard,
		Cents:       cents,
		Timestamp:   time.Now().Unix(),
		Note:        note,
		Category:    category,
		Status:      bank.StatusCompleted,
	})
	if err := s.saveCurrent(); err != nil {
		return "", err
	}

	if _, credited := adjustRecipientBalance(s.users, s.log, toCard, cents); !credited {
		return "transfer completed (recipient not found)", nil
	}
	return "transfer completed", nil
}

// PayFavorite delegates to Transfer with the stored destination and note of
// the named favorite.
func (s *LedgerService) PayFavorite(ctx context.Context, favName, fromAccount string, cents int64, category string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	okMsg, err := s.payFavorite(favName, fromAccount, cents, category)
	recordOutcome(ctx, s.audit, s.log, "payFavorite", s.state.info().Username, err, okMsg)
	return err
}

func (s *LedgerService) payFavorite(favName, fromAccount string, cents int64, category string) (string, error) {
	u, err := s.state.regularUser()
	if err != nil {
		return "", err
	}
	for _, f := range u.Favorites {
		if f.Name == favName {
			return s.transfer(fromAccount, f.ToCard, cents, f.Note, category)
		}
	}
	return "", bank.NewValidationError("no such favorite payment")
}

// Deposit credits an owned account directly and records a completed
// transaction whose source is the caller-supplied external reference.
func (s *LedgerService) Deposit(ctx context.Context, accountNumber string, cents int64, externalAccount string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	err := s.deposit(accountNumber, cents, externalAccount)
	recordOutcome(ctx, s.audit, s.log, "deposit", s.state.info().Username, err, "account credited")
	return err
}

func (s *LedgerService) deposit(accountNumber string, cents int64, externalAccount string) error {
	u, err := s.state.regularUser()
	if err != nil {
		return err
	}
	if cents <= 0 {
		return bank.NewValidationError("amount must be positive")
	}
	acc := u.FindAccount(accountNumber)
	if acc == nil {
		return bank.NewValidationError("no such account")
	}
	acc.BalanceCents += cents

	u.History = append(u.History, bank.Transaction{
		ID:          bank.NumericID(bank.TransactionNumberDigits),
		FromAccount: externalAccount,
		ToCard:      accountNumber,
		Cents:       cents,
		Timestamp:   time.Now().Unix(),
		Note:        "Account deposit",
		Category:    bank.CategoryOther,
		Status:      bank.StatusCompleted,
	})
	return s.saveCurrent()
}

// ClearNotifications empties the session user's notification list.
func (s *LedgerService) ClearNotifications(ctx context.Context) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	err := s.clearNotifications()
	recordOutcome(ctx, s.audit, s.log, "clearNotifications", s.state.info().Username, err, "notifications cleared")
	return err
}

func (s *LedgerService) clearNotifications() error {
	u, err := s.state.regularUser()
	if err != nil {
		return err
	}
	u.Notifications = nil
	return s.saveCurrent()
}

// ListAccounts returns the session user's accounts; empty for other sessions.
func (s *LedgerService) ListAccounts() []bank.Account {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u, err := s.state.regularUser()
	if err != nil {
		return nil
	}
	out := make([]bank.Account, len(u.Accounts))
	copy(out, u.Accounts)
	return out
}

// ListCards returns the session user's cards.
func (s *LedgerService) ListCards() []bank.Card {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u, err := s.state.regularUser()
	if err != nil {
		return nil
	}
	out := make([]bank.Card, len(u.Cards))
	copy(out, u.Cards)
	return out
}

// ListHistory returns the session user's transaction history.
func (s *LedgerService) ListHistory() []bank.Transaction {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u, err := s.state.regularUser()
	if err != nil {
		return nil
	}
	out := make([]bank.Transaction, len(u.History))
	copy(out, u.History)
	return out
}

// ListFavorites returns the session user's favorite payments.
func (s *LedgerService) ListFavorites() []bank.FavoritePayment {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u, err := s.state.regularUser()
	if err != nil {
		return nil
	}
	out := make([]bank.FavoritePayment, len(u.Favorites))
	copy(out, u.Favorites)
	return out
}

// ListNotifications returns the session user's notification strings.
func (s *LedgerService) ListNotifications() []string {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	u, err := s.state.regularUser()
	if err != nil {
		return nil
	}
	out := make([]string, len(u.Notifications))
	copy(out, u.Notifications)
	return out
}

// CategoryStat is one slice of the expense breakdown.
type CategoryStat struct {
	Name        string  `json:"name"`
	AmountCents int64   `json:"amount"`
	Percent     float64 `json:"percent"`
}

// ExpenseStats aggregates the session user's outgoing completed transactions
// per category.
type ExpenseStats struct {
	TotalCents int64                   `json:"total"`
	Categories map[string]CategoryStat `json:"categories"`
}

var categoryDisplayNames = map[string]string{
	bank.CategoryMedicine:      "Medicine & healthcare",
	bank.CategorySport:         "Sport",
	bank.CategoryFood:          "Groceries",
	bank.CategoryEntertainment: "Entertainment",
	bank.CategoryOther:         "Other",
}

// ExpenseStats computes per-category totals and percentages over the session
// user's outgoing completed transactions. A transaction is outgoing when its
// source matches one of the user's own account numbers, which excludes
// deposits. The zero value is returned for non-regular sessions.
func (s *LedgerService) ExpenseStats() ExpenseStats {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	stats := ExpenseStats{Categories: make(map[string]CategoryStat, len(categoryDisplayNames))}
	u, err := s.state.regularUser()
	if err != nil {
		return stats
	}

	totals := make(map[string]int64)
	for _, t := range u.History {
		if t.Cents <= 0 || t.Status != bank.StatusCompleted {
			continue
		}
		if u.FindAccount(t.FromAccount) == nil {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = bank.CategoryOther
		}
		totals[cat] += t.Cents
	}

	// Unknown categories count toward the total but are not broken out.
	for _, amount := range totals {
		stats.TotalCents += amount
	}
	for key, name := range categoryDisplayNames {
		amount := totals[key]
		var percent float64
		if stats.TotalCents > 0 {
			percent = float64(amount) * 100 / float64(stats.TotalCents)
		}
		stats.Categories[key] = CategoryStat{Name: name, AmountCents: amount, Percent: percent}
	}
	return stats
}

// Receipt is the printable projection of one transaction.
type Receipt struct {
	User         string `json:"user"`
	ID           string `json:"id"`
	FromAccount  string `json:"fromAccount"`
	ToCard       string `json:"toCard"`
	Cents        int64  `json:"cents"`
	Timestamp    int64  `json:"timestamp"`
	Note         string `json:"note"`
	Status       string `json:"status"`
	CancelReason string `json:"cancelReason"`
}

func receiptOf(username string, t bank.Transaction) Receipt {
	return Receipt{
		User:         username,
		ID:           t.ID,
		FromAccount:  t.FromAccount,
		ToCard:       t.ToCard,
		Cents:        t.Cents,
		Timestamp:    t.Timestamp,
		Note:         t.Note,
		Status:       t.Status,
		CancelReason: t.CancelReason,
	}
}

// ReceiptFor finds a transaction by id. The admin session may fetch any
// user's transaction; a regular session only its own history.
func (s *LedgerService) ReceiptFor(transactionID string) (Receipt, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.receiptFor(transactionID)
}

func (s *LedgerService) receiptFor(transactionID string) (Receipt, error) {
	txID := strings.TrimSpace(transactionID)

	switch s.state.session.Kind {
	case SessionAdmin:
		all, err := s.users.LoadAll()
		if err != nil {
			return Receipt{}, err
		}
		for _, u := range all {
			if t := u.FindTransaction(txID); t != nil {
				return receiptOf(u.Username, *t), nil
			}
		}
	case SessionRegular:
		u := s.state.session.User
		if t := u.FindTransaction(txID); t != nil {
			return receiptOf(u.Username, *t), nil
		}
	}
	return Receipt{}, bank.NewNotFoundError("receipt not found")
}

// SaveReceiptToFile renders the receipt as a plain-text document at the given
// path and returns the path. Formatting only; the ledger is not touched.
func (s *LedgerService) SaveReceiptToFile(ctx context.Context, transactionID, path string) (string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	written, err := s.saveReceiptToFile(transactionID, path)
	recordOutcome(ctx, s.audit, s.log, "saveReceipt", s.state.info().Username, err, "receipt saved: "+path)
	return written, err
}

func (s *LedgerService) saveReceiptToFile(transactionID, path string) (string, error) {
	r, err := s.receiptFor(transactionID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("TRANSFER RECEIPT\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Transaction ID: %s\n", r.ID)
	fmt.Fprintf(&b, "User: %s\n", r.User)
	fmt.Fprintf(&b, "From: %s\n", r.FromAccount)
	fmt.Fprintf(&b, "To: %s\n", r.ToCard)
	fmt.Fprintf(&b, "Amount: %.2f\n", float64(r.Cents)/100)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Note: %s\n", r.Note)
	if r.CancelReason != "" {
		fmt.Fprintf(&b, "Cancel reason: %s\n", r.CancelReason)
	}
	if r.Timestamp > 0 {
		fmt.Fprintf(&b, "Date: %s\n", time.Unix(r.Timestamp, 0).Format("2006-01-02 15:04:05"))
	}
	b.WriteString("================\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", bank.NewStorageError("cannot write receipt file: "+path, err)
	}
	return path, nil
}

// DownloadReceipt saves the receipt under the configured receipts directory.
func (s *LedgerService) DownloadReceipt(ctx context.Context, transactionID string) (string, error) {
	dir := s.cfg.ReceiptsDir
	if dir == "" {
		dir = filepath.Join("data", "receipts")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", bank.NewStorageError("cannot create receipts dir", err)
	}
	path := filepath.Join(dir, "receipt_"+strings.TrimSpace(transactionID)+".txt")
	return s.SaveReceiptToFile(ctx, transactionID, path)
}

// IsCardExpired checks an MM/YY expiry against the current date.
func (s *LedgerService) IsCardExpired(expiry string) bool {
	return bank.CardExpired(expiry, time.Now())
}

// RatesText returns the exchange-rate passthrough text.
func (s *LedgerService) RatesText() string {
	text, err := s.rates.Text()
	if err != nil {
		if s.log != nil {
			s.log.Warnw("rates unavailable", "err", err)
		}
		return "rates unavailable"
	}
	return text
}
