package handlers

import (
	"errors"
	"net/http"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/logger"
	"github.com/plightick/kursovaya/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging. It is a thin command
// surface: every route delegates straight to the ledger controller.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Notification push over a WebSocket upgrade, same port.
	router.GET("/ws/notifications", h.wsNotifications)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
		auth.POST("/sign-out", h.authMiddleware, h.signOut)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		api.GET("/session", h.getSession)

		api.GET("/accounts", h.listAccounts)
		api.POST("/accounts", h.addAccount)
		api.POST("/accounts/deposit", h.deposit)

		api.GET("/cards", h.listCards)
		api.POST("/cards", h.addCard)
		api.GET("/cards/expiry-check", h.checkCardExpiry)

		api.GET("/favorites", h.listFavorites)
		api.POST("/favorites", h.addFavorite)
		api.POST("/favorites/pay", h.payFavorite)

		api.POST("/transfers", h.transfer)
		api.GET("/history", h.listHistory)
		api.GET("/stats/expenses", h.expenseStats)

		api.GET("/receipts/:id", h.getReceipt)
		api.POST("/receipts/:id/download", h.downloadReceipt)

		api.GET("/notifications", h.listNotifications)
		api.DELETE("/notifications", h.clearNotifications)

		api.GET("/rates", h.getRates)

		h.registerAdminRoutes(api)
	}
}

func (h *Handler) registerAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin", h.adminMiddleware)
	{
		admin.GET("/users", h.adminListUsers)
		admin.GET("/users/info", h.adminUsersInfo)
		admin.GET("/users/:username/accounts", h.adminUserAccounts)
		admin.GET("/users/:username/cards", h.adminUserCards)
		admin.DELETE("/users", h.adminClearUsers)

		admin.GET("/transfers", h.adminListTransfers)
		admin.POST("/transfers/:id/cancel", h.adminCancelTransfer)

		admin.GET("/audit", h.adminListAudit)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFromError maps the domain error taxonomy to HTTP status codes.
func statusFromError(err error) int {
	var (
		validation *bank.ValidationError
		auth       *bank.AuthError
		notFound   *bank.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the single outward error shape all commands share.
func (h *Handler) respondError(c *gin.Context, err error) {
	if h.log != nil {
		h.log.Infow("command failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(statusFromError(err), gin.H{"error": err.Error()})
}

// bindJSONOrBadRequest binds the request body into dst, answering 400 on
// failure. Returns false when the request was already handled.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad request body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
