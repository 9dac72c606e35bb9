package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/service"
)

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "", "")
	wantStatus(t, w, http.StatusOK)
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "", "")
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("response missing X-Request-Id")
	}
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := newTestRouter(t)

	// No Authorization header.
	w := doRequest(router, http.MethodGet, "/api/v1/accounts", "", "")
	wantStatus(t, w, http.StatusUnauthorized)

	// Wrong scheme.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Token "+userToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	wantStatus(t, w, http.StatusUnauthorized)

	// Unknown token.
	w = doRequest(router, http.MethodGet, "/api/v1/accounts", "bogus", "")
	wantStatus(t, w, http.StatusUnauthorized)

	// Valid token.
	w = doRequest(router, http.MethodGet, "/api/v1/accounts", userToken, "")
	wantStatus(t, w, http.StatusOK)
}

func TestSignUp(t *testing.T) {
	router, m := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/sign-up", "", `{"username":"alice","password":"pw"}`)
	wantStatus(t, w, http.StatusOK)

	// Missing required field.
	w = doRequest(router, http.MethodPost, "/auth/sign-up", "", `{"username":"alice"}`)
	wantStatus(t, w, http.StatusBadRequest)

	// Domain validation error maps to 400.
	m.auth.registerErr = bank.NewValidationError("user already exists")
	w = doRequest(router, http.MethodPost, "/auth/sign-up", "", `{"username":"alice","password":"pw"}`)
	wantStatus(t, w, http.StatusBadRequest)
}

func TestSignIn(t *testing.T) {
	router, m := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/sign-in", "", `{"username":"alice","password":"pw"}`)
	wantStatus(t, w, http.StatusOK)
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["token"] != userToken {
		t.Errorf("token = %q", resp["token"])
	}

	m.auth.loginFn = func(_, _ string) (string, error) {
		return "", bank.NewAuthError("invalid username or password")
	}
	w = doRequest(router, http.MethodPost, "/auth/sign-in", "", `{"username":"alice","password":"bad"}`)
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestSignOut(t *testing.T) {
	router, m := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/sign-out", userToken, "")
	wantStatus(t, w, http.StatusOK)
	if !m.auth.loggedOut {
		t.Error("Logout not called")
	}
}

func TestListAccounts(t *testing.T) {
	router, m := newTestRouter(t)
	m.ledger.accounts = []bank.Account{
		{AccountNumber: "11112222333344445555", Currency: "USD", BalanceCents: 7500},
	}

	w := doRequest(router, http.MethodGet, "/api/v1/accounts", userToken, "")
	wantStatus(t, w, http.StatusOK)

	var resp struct {
		Count    int            `json:"count"`
		Accounts []bank.Account `json:"accounts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || resp.Accounts[0].BalanceCents != 7500 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestTransfer(t *testing.T) {
	router, m := newTestRouter(t)

	body := `{"from_account":"acc-1","to_card":"card-1","cents":2500,"note":"lunch","category":"food"}`
	w := doRequest(router, http.MethodPost, "/api/v1/transfers", userToken, body)
	wantStatus(t, w, http.StatusOK)

	got := m.ledger.lastTransfer
	if got == nil {
		t.Fatal("Transfer not called")
	}
	if got.fromAccount != "acc-1" || got.toCard != "card-1" || got.cents != 2500 ||
		got.note != "lunch" || got.category != "food" {
		t.Errorf("transfer call = %+v", got)
	}

	// Missing body field never reaches the service.
	m.ledger.lastTransfer = nil
	w = doRequest(router, http.MethodPost, "/api/v1/transfers", userToken, `{"to_card":"card-1"}`)
	wantStatus(t, w, http.StatusBadRequest)
	if m.ledger.lastTransfer != nil {
		t.Error("Transfer called with invalid body")
	}

	// Domain errors map onto their HTTP codes.
	m.ledger.transferErr = bank.NewValidationError("insufficient funds")
	w = doRequest(router, http.MethodPost, "/api/v1/transfers", userToken, body)
	wantStatus(t, w, http.StatusBadRequest)

	m.ledger.transferErr = bank.NewAuthError("authentication required")
	w = doRequest(router, http.MethodPost, "/api/v1/transfers", userToken, body)
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestGetReceiptNotFound(t *testing.T) {
	router, m := newTestRouter(t)
	m.ledger.receiptErr = bank.NewNotFoundError("receipt not found")

	w := doRequest(router, http.MethodGet, "/api/v1/receipts/000011112222", userToken, "")
	wantStatus(t, w, http.StatusNotFound)
}

func TestCheckCardExpiry(t *testing.T) {
	router, m := newTestRouter(t)
	m.ledger.expired = true

	w := doRequest(router, http.MethodGet, "/api/v1/cards/expiry-check?expiry=01/24", userToken, "")
	wantStatus(t, w, http.StatusOK)

	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp["expired"] {
		t.Error("expired = false")
	}
}

func TestAdminRoutesForbiddenForRegularToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/admin/users",
		"/api/v1/admin/transfers",
		"/api/v1/admin/audit",
	} {
		w := doRequest(router, http.MethodGet, path, userToken, "")
		wantStatus(t, w, http.StatusForbidden)
	}
}

func TestAdminListUsers(t *testing.T) {
	router, m := newTestRouter(t)
	m.admin.users = []string{"alice", "bob"}

	w := doRequest(router, http.MethodGet, "/api/v1/admin/users", adminToken, "")
	wantStatus(t, w, http.StatusOK)

	// ?q= routes to search, ?sort= to sorting.
	doRequest(router, http.MethodGet, "/api/v1/admin/users?q=bob", adminToken, "")
	if m.admin.searched != "bob" {
		t.Errorf("searched = %q", m.admin.searched)
	}
	doRequest(router, http.MethodGet, "/api/v1/admin/users?sort=accounts", adminToken, "")
	if m.admin.sortedBy != "accounts" {
		t.Errorf("sortedBy = %q", m.admin.sortedBy)
	}
}

func TestAdminListTransfers(t *testing.T) {
	router, m := newTestRouter(t)
	m.admin.transfers = []service.TransferRecord{{User: "alice", ID: "000011112222", Cents: 2500}}

	w := doRequest(router, http.MethodGet, "/api/v1/admin/transfers", adminToken, "")
	wantStatus(t, w, http.StatusOK)

	doRequest(router, http.MethodGet, "/api/v1/admin/transfers?sort=amount", adminToken, "")
	if m.admin.sortedBy != "amount" {
		t.Errorf("sortedBy = %q", m.admin.sortedBy)
	}
}

func TestAdminCancelTransfer(t *testing.T) {
	router, m := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/admin/transfers/000011112222/cancel", adminToken, `{"reason":"duplicate"}`)
	wantStatus(t, w, http.StatusOK)
	if m.admin.lastCancel == nil || m.admin.lastCancel.id != "000011112222" || m.admin.lastCancel.reason != "duplicate" {
		t.Errorf("cancel call = %+v", m.admin.lastCancel)
	}

	// Missing reason is rejected before the service is reached.
	m.admin.lastCancel = nil
	w = doRequest(router, http.MethodPost, "/api/v1/admin/transfers/000011112222/cancel", adminToken, `{}`)
	wantStatus(t, w, http.StatusBadRequest)
	if m.admin.lastCancel != nil {
		t.Error("CancelTransfer called with invalid body")
	}

	m.admin.cancelErr = bank.NewNotFoundError("payment not found")
	w = doRequest(router, http.MethodPost, "/api/v1/admin/transfers/unknown/cancel", adminToken, `{"reason":"x"}`)
	wantStatus(t, w, http.StatusNotFound)
}

func TestAdminClearUsers(t *testing.T) {
	router, m := newTestRouter(t)

	w := doRequest(router, http.MethodDelete, "/api/v1/admin/users", adminToken, "")
	wantStatus(t, w, http.StatusOK)
	if !m.admin.clearCalled {
		t.Error("ClearAllUsers not called")
	}
}
