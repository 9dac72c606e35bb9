package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/service"

	"github.com/gin-gonic/gin"
)

// Fixed bearer tokens the mock authorization recognizes.
const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

type mockAuth struct {
	loginFn     func(username, password string) (string, error)
	registerErr error
	current     service.SessionInfo
	loggedOut   bool
}

func (m *mockAuth) Login(_ context.Context, username, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(username, password)
	}
	return userToken, nil
}

func (m *mockAuth) Logout(context.Context) { m.loggedOut = true }

func (m *mockAuth) Register(_ context.Context, _, _ string) error { return m.registerErr }

func (m *mockAuth) ParseToken(accessToken string) (service.Claims, error) {
	switch accessToken {
	case userToken:
		return service.Claims{Username: "alice"}, nil
	case adminToken:
		return service.Claims{Username: bank.AdminUsername, Admin: true}, nil
	default:
		return service.Claims{}, errors.New("invalid token")
	}
}

func (m *mockAuth) Current() service.SessionInfo { return m.current }

type transferCall struct {
	fromAccount, toCard string
	cents               int64
	note, category      string
}

type mockLedger struct {
	accounts      []bank.Account
	cards         []bank.Card
	history       []bank.Transaction
	favorites     []bank.FavoritePayment
	notifications []string
	stats         service.ExpenseStats
	receipt       service.Receipt
	receiptErr    error
	receiptPath   string
	ratesText     string
	expired       bool

	transferErr  error
	lastTransfer *transferCall

	addAccountErr error
	addCardErr    error
	addFavErr     error
	payErr        error
	depositErr    error
	clearErr      error
}

func (m *mockLedger) AddAccount(_ context.Context, _ string) error { return m.addAccountErr }

func (m *mockLedger) AddCard(_ context.Context, _, _ string) error { return m.addCardErr }

func (m *mockLedger) AddFavorite(_ context.Context, _, _, _ string) error { return m.addFavErr }

func (m *mockLedger) Transfer(_ context.Context, fromAccount, toCard string, cents int64, note, category string) error {
	m.lastTransfer = &transferCall{fromAccount, toCard, cents, note, category}
	return m.transferErr
}

func (m *mockLedger) PayFavorite(_ context.Context, _, _ string, _ int64, _ string) error {
	return m.payErr
}

func (m *mockLedger) Deposit(_ context.Context, _ string, _ int64, _ string) error {
	return m.depositErr
}

func (m *mockLedger) ClearNotifications(context.Context) error { return m.clearErr }

func (m *mockLedger) ListAccounts() []bank.Account          { return m.accounts }
func (m *mockLedger) ListCards() []bank.Card                { return m.cards }
func (m *mockLedger) ListHistory() []bank.Transaction       { return m.history }
func (m *mockLedger) ListFavorites() []bank.FavoritePayment { return m.favorites }
func (m *mockLedger) ListNotifications() []string           { return m.notifications }
func (m *mockLedger) ExpenseStats() service.ExpenseStats    { return m.stats }
func (m *mockLedger) IsCardExpired(string) bool             { return m.expired }
func (m *mockLedger) RatesText() string                     { return m.ratesText }

func (m *mockLedger) ReceiptFor(string) (service.Receipt, error) {
	return m.receipt, m.receiptErr
}

func (m *mockLedger) SaveReceiptToFile(_ context.Context, _, path string) (string, error) {
	return path, m.receiptErr
}

func (m *mockLedger) DownloadReceipt(context.Context, string) (string, error) {
	return m.receiptPath, m.receiptErr
}

type cancelCall struct {
	id, reason string
}

type mockAdmin struct {
	users     []string
	infos     []service.UserInfo
	accounts  []bank.Account
	cards     []bank.Card
	transfers []service.TransferRecord

	searched    string
	sortedBy    string
	lastCancel  *cancelCall
	cancelErr   error
	clearErr    error
	clearCalled bool
}

func (m *mockAdmin) ListUsers() ([]string, error) { return m.users, nil }

func (m *mockAdmin) SearchUsers(query string) ([]string, error) {
	m.searched = query
	return m.users, nil
}

func (m *mockAdmin) SortUsers(sortBy string) ([]string, error) {
	m.sortedBy = sortBy
	return m.users, nil
}

func (m *mockAdmin) AllUsersInfo(string) ([]service.UserInfo, error) { return m.infos, nil }

func (m *mockAdmin) UserAccounts(string) ([]bank.Account, error) { return m.accounts, nil }

func (m *mockAdmin) UserCards(string) ([]bank.Card, error) { return m.cards, nil }

func (m *mockAdmin) ListAllTransfers(string) ([]service.TransferRecord, error) {
	return m.transfers, nil
}

func (m *mockAdmin) SortTransfers(sortBy string) ([]service.TransferRecord, error) {
	m.sortedBy = sortBy
	return m.transfers, nil
}

func (m *mockAdmin) CancelTransfer(_ context.Context, transactionID, reason string) error {
	m.lastCancel = &cancelCall{transactionID, reason}
	return m.cancelErr
}

func (m *mockAdmin) ClearAllUsers(context.Context) error {
	m.clearCalled = true
	return m.clearErr
}

type mockAuditLog struct {
	filter service.LogFilter
	events []bank.AuditEvent
	err    error
}

func (m *mockAuditLog) List(_ context.Context, f service.LogFilter) ([]bank.AuditEvent, error) {
	m.filter = f
	return m.events, m.err
}

type mocks struct {
	auth   *mockAuth
	ledger *mockLedger
	admin  *mockAdmin
	audit  *mockAuditLog
}

func newTestRouter(t *testing.T) (*gin.Engine, *mocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := &mocks{
		auth:   &mockAuth{},
		ledger: &mockLedger{},
		admin:  &mockAdmin{},
		audit:  &mockAuditLog{},
	}
	h := NewHandler(&service.Service{
		Authorization: m.auth,
		Ledger:        m.ledger,
		Admin:         m.admin,
		AuditLog:      m.audit,
	}, nil)
	return h.InitRoutes(), m
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, code, w.Body.String())
	}
}
