package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addAccountRequest struct {
	Currency string `json:"currency" binding:"required"`
}

type addCardRequest struct {
	Expiry        string `json:"expiry" binding:"required"` // MM/YY
	LinkedAccount string `json:"linked_account" binding:"required"`
}

type addFavoriteRequest struct {
	Name   string `json:"name" binding:"required"`
	ToCard string `json:"to_card" binding:"required"`
	Note   string `json:"note"`
}

type transferRequest struct {
	FromAccount string `json:"from_account" binding:"required"`
	ToCard      string `json:"to_card" binding:"required"`
	Cents       int64  `json:"cents" binding:"required"`
	Note        string `json:"note"`
	Category    string `json:"category"`
}

type payFavoriteRequest struct {
	Name        string `json:"name" binding:"required"`
	FromAccount string `json:"from_account" binding:"required"`
	Cents       int64  `json:"cents" binding:"required"`
	Category    string `json:"category"`
}

type depositRequest struct {
	AccountNumber   string `json:"account_number" binding:"required"`
	Cents           int64  `json:"cents" binding:"required"`
	ExternalAccount string `json:"external_account"`
}

// @Summary      List own accounts
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/accounts [get]
// @Security     BearerAuth
func (h *Handler) listAccounts(c *gin.Context) {
	accounts := h.services.ListAccounts()
	c.JSON(http.StatusOK, gin.H{"count": len(accounts), "accounts": accounts})
}

// @Summary      Add account
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  addAccountRequest  true  "Account payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/accounts [post]
// @Security     BearerAuth
func (h *Handler) addAccount(c *gin.Context) {
	var req addAccountRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.AddAccount(c.Request.Context(), req.Currency); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "account added"})
}

// @Summary      Deposit to own account
// @Description  Credits the account directly; the source is an external reference string.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  depositRequest  true  "Deposit payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/accounts/deposit [post]
// @Security     BearerAuth
func (h *Handler) deposit(c *gin.Context) {
	var req depositRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Deposit(c.Request.Context(), req.AccountNumber, req.Cents, req.ExternalAccount); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "account credited"})
}

// @Summary      List own cards
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/cards [get]
// @Security     BearerAuth
func (h *Handler) listCards(c *gin.Context) {
	cards := h.services.ListCards()
	c.JSON(http.StatusOK, gin.H{"count": len(cards), "cards": cards})
}

// @Summary      Add card
// @Description  The card is linked to one of the caller's own accounts; the holder name is always the session username.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  addCardRequest  true  "Card payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/cards [post]
// @Security     BearerAuth
func (h *Handler) addCard(c *gin.Context) {
	var req addCardRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.AddCard(c.Request.Context(), req.Expiry, req.LinkedAccount); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "card added"})
}

// @Summary      Check card expiry
// @Description  Two-digit years are read as 2000+YY; malformed strings count as not expired.
// @Tags         ledger
// @Produce      json
// @Param        expiry  query  string  true  "MM/YY"
// @Success      200  {object}  map[string]bool
// @Router       /api/v1/cards/expiry-check [get]
// @Security     BearerAuth
func (h *Handler) checkCardExpiry(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"expired": h.services.IsCardExpired(c.Query("expiry"))})
}

// @Summary      List favorite payments
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/favorites [get]
// @Security     BearerAuth
func (h *Handler) listFavorites(c *gin.Context) {
	favorites := h.services.ListFavorites()
	c.JSON(http.StatusOK, gin.H{"count": len(favorites), "favorites": favorites})
}

// @Summary      Add favorite payment
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  addFavoriteRequest  true  "Favorite payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/favorites [post]
// @Security     BearerAuth
func (h *Handler) addFavorite(c *gin.Context) {
	var req addFavoriteRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.AddFavorite(c.Request.Context(), req.Name, req.ToCard, req.Note); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "favorite payment added"})
}

// @Summary      Pay a favorite
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  payFavoriteRequest  true  "Payment payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/favorites/pay [post]
// @Security     BearerAuth
func (h *Handler) payFavorite(c *gin.Context) {
	var req payFavoriteRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.PayFavorite(c.Request.Context(), req.Name, req.FromAccount, req.Cents, req.Category); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "transfer completed"})
}

// @Summary      Transfer money
// @Description  Debits the source account and credits the resolved recipient. The transfer succeeds even when no recipient resolves.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  transferRequest  true  "Transfer payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/transfers [post]
// @Security     BearerAuth
func (h *Handler) transfer(c *gin.Context) {
	var req transferRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Transfer(c.Request.Context(), req.FromAccount, req.ToCard, req.Cents, req.Note, req.Category); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "transfer completed"})
}

// @Summary      Own transaction history
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/history [get]
// @Security     BearerAuth
func (h *Handler) listHistory(c *gin.Context) {
	history := h.services.ListHistory()
	c.JSON(http.StatusOK, gin.H{"count": len(history), "history": history})
}

// @Summary      Expense statistics
// @Description  Per-category totals and percentages over outgoing completed transactions.
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  service.ExpenseStats
// @Router       /api/v1/stats/expenses [get]
// @Security     BearerAuth
func (h *Handler) expenseStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.ExpenseStats())
}

// @Summary      Receipt for a transaction
// @Tags         ledger
// @Produce      json
// @Param        id  path  string  true  "Transaction id"
// @Success      200  {object}  service.Receipt
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/receipts/{id} [get]
// @Security     BearerAuth
func (h *Handler) getReceipt(c *gin.Context) {
	receipt, err := h.services.ReceiptFor(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// @Summary      Export a receipt to a text file
// @Tags         ledger
// @Produce      json
// @Param        id  path  string  true  "Transaction id"
// @Success      200  {object}  map[string]string  "path"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/receipts/{id}/download [post]
// @Security     BearerAuth
func (h *Handler) downloadReceipt(c *gin.Context) {
	path, err := h.services.DownloadReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// @Summary      List notifications
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/notifications [get]
// @Security     BearerAuth
func (h *Handler) listNotifications(c *gin.Context) {
	notifications := h.services.ListNotifications()
	c.JSON(http.StatusOK, gin.H{"count": len(notifications), "notifications": notifications})
}

// @Summary      Clear notifications
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/notifications [delete]
// @Security     BearerAuth
func (h *Handler) clearNotifications(c *gin.Context) {
	if err := h.services.ClearNotifications(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "notifications cleared"})
}

// @Summary      Exchange rates text
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/rates [get]
// @Security     BearerAuth
func (h *Handler) getRates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rates": h.services.RatesText()})
}
