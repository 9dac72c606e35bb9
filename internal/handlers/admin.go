package handlers

import (
	"net/http"

	"github.com/plightick/kursovaya/internal/service"

	"github.com/gin-gonic/gin"
)

type cancelTransferRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// @Summary      List usernames
// @Description  Optional substring search (q) and sorting by name, accounts, cards or transactions.
// @Tags         admin
// @Produce      json
// @Param        q     query  string  false  "Substring filter"
// @Param        sort  query  string  false  "Sort key"  Enums(name,accounts,cards,transactions)
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/users [get]
// @Security     BearerAuth
func (h *Handler) adminListUsers(c *gin.Context) {
	var (
		names []string
		err   error
	)
	switch {
	case c.Query("q") != "":
		names, err = h.services.SearchUsers(c.Query("q"))
	case c.Query("sort") != "":
		names, err = h.services.SortUsers(c.Query("sort"))
	default:
		names, err = h.services.ListUsers()
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(names), "users": names})
}

// @Summary      Full per-user summaries
// @Tags         admin
// @Produce      json
// @Param        sort  query  string  false  "Sort key"  Enums(name,accounts,cards,transactions)
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/users/info [get]
// @Security     BearerAuth
func (h *Handler) adminUsersInfo(c *gin.Context) {
	info, err := h.services.AllUsersInfo(c.Query("sort"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(info), "users": info})
}

// @Summary      Accounts of a named user
// @Tags         admin
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/users/{username}/accounts [get]
// @Security     BearerAuth
func (h *Handler) adminUserAccounts(c *gin.Context) {
	accounts, err := h.services.UserAccounts(c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(accounts), "accounts": accounts})
}

// @Summary      Cards of a named user
// @Tags         admin
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/users/{username}/cards [get]
// @Security     BearerAuth
func (h *Handler) adminUserCards(c *gin.Context) {
	cards, err := h.services.UserCards(c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(cards), "cards": cards})
}

// @Summary      Delete every stored user
// @Description  Irreversible; confirmation is the caller's responsibility.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/users [delete]
// @Security     BearerAuth
func (h *Handler) adminClearUsers(c *gin.Context) {
	if err := h.services.ClearAllUsers(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "all users removed"})
}

// @Summary      All transactions across users
// @Description  Free-text query (q) over all fields, or sorting by user, amount, date or status.
// @Tags         admin
// @Produce      json
// @Param        q     query  string  false  "Free-text filter"
// @Param        sort  query  string  false  "Sort key"  Enums(user,amount,date,status)
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/transfers [get]
// @Security     BearerAuth
func (h *Handler) adminListTransfers(c *gin.Context) {
	var (
		transfers []service.TransferRecord
		err       error
	)
	if sortBy := c.Query("sort"); sortBy != "" {
		transfers, err = h.services.SortTransfers(sortBy)
	} else {
		transfers, err = h.services.ListAllTransfers(c.Query("q"))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(transfers), "transfers": transfers})
}

// @Summary      Cancel a transfer
// @Description  Credits the sender back, reverses the recipient's credit (floored at zero) and notifies both.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Transaction id"
// @Param        body  body  cancelTransferRequest  true  "Cancellation payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/admin/transfers/{id}/cancel [post]
// @Security     BearerAuth
func (h *Handler) adminCancelTransfer(c *gin.Context) {
	var req cancelTransferRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.CancelTransfer(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "payment cancelled"})
}
