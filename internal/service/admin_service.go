package service

import (
	"context"
	"sort"
	"strings"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/logger"
	"github.com/plightick/kursovaya/internal/repository"
)

// AdminService implements the administrator commands and the cross-user
// projections built by scanning every stored user.
type AdminService struct {
	users repository.Users
	audit repository.Audit
	state *sessionState
	log   *logger.Logger
}

func NewAdminService(users repository.Users, audit repository.Audit, state *sessionState, log *logger.Logger) *AdminService {
	return &AdminService{users: users, audit: audit, state: state, log: log}
}

// UserInfo is the per-user summary of the admin directory listing.
type UserInfo struct {
	Username           string         `json:"username"`
	AccountsCount      int            `json:"accountsCount"`
	CardsCount         int            `json:"cardsCount"`
	TransactionsCount  int            `json:"transactionsCount"`
	FavoritesCount     int            `json:"favoritesCount"`
	NotificationsCount int            `json:"notificationsCount"`
	TotalBalanceCents  int64          `json:"totalBalance"`
	Accounts           []bank.Account `json:"accounts"`
	Cards              []bank.Card    `json:"cards"`
}

// TransferRecord is one history entry annotated with its owning user.
type TransferRecord struct {
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

// User sort keys; anything else falls back to sorting by name.
const (
	SortByName         = "name"
	SortByAccounts     = "accounts"
	SortByCards        = "cards"
	SortByTransactions = "transactions"
)

// Transfer sort keys.
const (
	SortTransfersByUser   = "user"
	SortTransfersByAmount = "amount"
	SortTransfersByDate   = "date"
	SortTransfersByStatus = "status"
)

// ListUsers returns all stored usernames in directory order.
func (s *AdminService) ListUsers() ([]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	return s.users.ListUsernames()
}

// SearchUsers returns usernames containing the query as a substring.
func (s *AdminService) SearchUsers(query string) ([]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	names, err := s.users.ListUsernames()
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.Contains(name, q) {
			out = append(out, name)
		}
	}
	return out, nil
}

// sortUserRecords orders users by the requested count key with ties broken by
// username ascending. Unknown keys sort by name.
func sortUserRecords(users []bank.User, sortBy string) {
	key := strings.ToLower(strings.TrimSpace(sortBy))
	countOf := func(u *bank.User) int {
		switch key {
		case SortByAccounts:
			return len(u.Accounts)
		case SortByCards:
			return len(u.Cards)
		case SortByTransactions:
			return len(u.History)
		default:
			return 0
		}
	}
	sort.Slice(users, func(i, j int) bool {
		ci, cj := countOf(&users[i]), countOf(&users[j])
		if ci == cj {
			return users[i].Username < users[j].Username
		}
		return ci < cj
	})
}

// SortUsers returns all usernames ordered by the given key.
func (s *AdminService) SortUsers(sortBy string) ([]string, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.users.LoadAll()
	if err != nil {
		return nil, err
	}
	sortUserRecords(users, sortBy)
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out, nil
}

// AllUsersInfo returns the full per-user summaries ordered by the given key.
func (s *AdminService) AllUsersInfo(sortBy string) ([]UserInfo, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.users.LoadAll()
	if err != nil {
		return nil, err
	}
	sortUserRecords(users, sortBy)

	out := make([]UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, UserInfo{
			Username:           u.Username,
			AccountsCount:      len(u.Accounts),
			CardsCount:         len(u.Cards),
			TransactionsCount:  len(u.History),
			FavoritesCount:     len(u.Favorites),
			NotificationsCount: len(u.Notifications),
			TotalBalanceCents:  u.TotalBalanceCents(),
			Accounts:           u.Accounts,
			Cards:              u.Cards,
		})
	}
	return out, nil
}

// UserAccounts lists the accounts of an arbitrary named user. A missing or
// unreadable user yields an empty list, not an error.
func (s *AdminService) UserAccounts(username string) ([]bank.Account, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	u, err := s.users.Load(strings.TrimSpace(username))
	if err != nil {
		return nil, nil
	}
	return u.Accounts, nil
}

// UserCards lists the cards of an arbitrary named user. A missing or
// unreadable user yields an empty list, not an error.
func (s *AdminService) UserCards(username string) ([]bank.Card, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	u, err := s.users.Load(strings.TrimSpace(username))
	if err != nil {
		return nil, nil
	}
	return u.Cards, nil
}

func (s *AdminService) collectTransfers() ([]TransferRecord, error) {
	users, err := s.users.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []TransferRecord
	for _, u := range users {
		for _, t := range u.History {
			out = append(out, TransferRecord{
				User:         u.Username,
				ID:           t.ID,
				FromAccount:  t.FromAccount,
				ToCard:       t.ToCard,
				Cents:        t.Cents,
				Timestamp:    t.Timestamp,
				Note:         t.Note,
				Status:       t.Status,
				CancelReason: t.CancelReason,
			})
		}
	}
	return out, nil
}

// ListAllTransfers returns every transaction across all users, optionally
// filtered by a free-text query over all fields.
func (s *AdminService) ListAllTransfers(query string) ([]TransferRecord, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	all, err := s.collectTransfers()
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return all, nil
	}
	out := make([]TransferRecord, 0, len(all))
	for _, t := range all {
		if strings.Contains(t.User, q) || strings.Contains(t.ID, q) ||
			strings.Contains(t.FromAccount, q) || strings.Contains(t.ToCard, q) ||
			strings.Contains(t.Note, q) || strings.Contains(t.Status, q) ||
			strings.Contains(t.CancelReason, q) {
			out = append(out, t)
		}
	}
	return out, nil
}

// SortTransfers returns every transaction ordered by user, amount, date or
// status, with ties broken by timestamp descending.
func (s *AdminService) SortTransfers(sortBy string) ([]TransferRecord, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if err := s.state.requireAdmin(); err != nil {
		return nil, err
	}
	all, err := s.collectTransfers()
	if err != nil {
		return nil, err
	}

	newerFirst := func(a, b TransferRecord) bool { return a.Timestamp > b.Timestamp }
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case SortTransfersByUser:
		sort.Slice(all, func(i, j int) bool {
			if all[i].User == all[j].User {
				return newerFirst(all[i], all[j])
			}
			return all[i].User < all[j].User
		})
	case SortTransfersByAmount:
		sort.Slice(all, func(i, j int) bool {
			if all[i].Cents == all[j].Cents {
				return newerFirst(all[i], all[j])
			}
			return all[i].Cents > all[j].Cents
		})
	case SortTransfersByDate:
		sort.Slice(all, func(i, j int) bool { return newerFirst(all[i], all[j]) })
	case SortTransfersByStatus:
		sort.Slice(all, func(i, j int) bool {
			if all[i].Status == all[j].Status {
				return newerFirst(all[i], all[j])
			}
			return all[i].Status < all[j].Status
		})
	}
	return all, nil
}

// CancelTransfer reverses a completed transaction: the sender's originating
// account (if it still exists) is credited back, the transaction is marked
// cancelled with the reason, and the recipient's earlier credit is reversed
// by resolution with a negative delta, clamped at zero. Sender and recipient
// are persisted as two independent writes with no atomicity between them.
func (s *AdminService) CancelTransfer(ctx context.Context, transactionID, reason string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	err := s.cancelTransfer(transactionID, reason)
	recordOutcome(ctx, s.audit, s.log, "cancelTransfer", s.state.info().Username, err, "payment cancelled")
	return err
}

func (s *AdminService) cancelTransfer(transactionID, reason string) error {
	if err := s.state.requireAdmin(); err != nil {
		return err
	}
	txID := strings.TrimSpace(transactionID)
	why := strings.TrimSpace(reason)
	if txID == "" {
		return bank.NewValidationError("specify the payment to cancel")
	}
	if why == "" {
		return bank.NewValidationError("specify the cancellation reason")
	}

	names, err := s.users.ListUsernames()
	if err != nil {
		return err
	}
	for _, name := range names {
		sender, err := s.users.Load(name)
		if err != nil {
			continue
		}
		t := sender.FindTransaction(txID)
		if t == nil {
			continue
		}
		if t.Status == bank.StatusCancelled {
			return bank.NewValidationError("payment already cancelled")
		}

		if acc := sender.FindAccount(t.FromAccount); acc != nil {
			acc.BalanceCents += t.Cents
		}
		t.Status = bank.StatusCancelled
		t.CancelReason = why
		sender.Notifications = append(sender.Notifications, "Payment "+t.ID+" cancelled: "+why)
		if err := s.users.Save(sender); err != nil {
			return err
		}

		recipient, reversed := adjustRecipientBalance(s.users, s.log, t.ToCard, -t.Cents)
		if reversed && recipient != "" && recipient != sender.Username {
			if ru, err := s.users.Load(recipient); err == nil {
				ru.Notifications = append(ru.Notifications, "Payment "+t.ID+" was cancelled by the administrator. Reason: "+why)
				if err := s.users.Save(ru); err != nil && s.log != nil {
					s.log.Warnw("cannot notify recipient about cancellation", "username", recipient, "err", err)
				}
			}
		}
		return nil
	}
	return bank.NewNotFoundError("payment not found")
}

// ClearAllUsers deletes every stored user file. Irreversible; confirmation is
// the caller's responsibility.
func (s *AdminService) ClearAllUsers(ctx context.Context) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	err := s.clearAllUsers()
	recordOutcome(ctx, s.audit, s.log, "clearAllUsers", s.state.info().Username, err, "all users removed")
	return err
}

func (s *AdminService) clearAllUsers() error {
	if err := s.state.requireAdmin(); err != nil {
		return err
	}
	return s.users.RemoveAll()
}
