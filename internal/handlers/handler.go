// Package handlers is the terminal's HTTP API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-pos-vault/internal/ai"
	"go-pos-vault/internal/app"
	"go-pos-vault/internal/auth"
	"go-pos-vault/internal/middleware"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/repository"
)

// Handler serves the API on top of an opened App.
type Handler struct {
	app   *app.App
	agent *ai.Agent
}

// New returns handlers for a.
func New(a *app.App, agent *ai.Agent) *Handler {
	return &Handler{app: a, agent: agent}
}

// Register mounts every route on r. loginLimit guards POST /login and may be nil.
func (h *Handler) Register(r gin.IRouter, loginLimit gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })

	login := []gin.HandlerFunc{h.Login}
	if loginLimit != nil {
		login = append([]gin.HandlerFunc{loginLimit}, login...)
	}
	r.POST("/login", login...)
	r.GET("/api/system/status", h.GetSystemStatus)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.app.Tokens, h.app.Vault))
	{
		api.POST("/logout", h.Logout)
		api.GET("/session", h.GetSession)

		api.GET("/products", h.GetProducts)
		api.GET("/categories", h.GetCategories)
		api.GET("/customers", h.GetCustomers)
		api.POST("/customers", h.AddCustomer)
		api.PUT("/customers/:id", h.UpdateCustomer)
		api.POST("/checkout", h.ProcessSale)
		api.GET("/transactions", h.GetTransactions)
		api.GET("/settings", h.GetSettings)
		api.GET("/reports/dashboard", h.GetDashboard)

		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleOwner))
		{
			admin.POST("/upload", h.UploadImage)
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/categories", h.AddCategory)
			admin.DELETE("/categories/:name", h.DeleteCategory)
			admin.DELETE("/customers/:id", h.DeleteCustomer)
			admin.POST("/transactions", h.AddTransaction)
			admin.POST("/transactions/:id/void", h.VoidTransaction)
			admin.PUT("/settings", h.UpdateSettings)

			admin.GET("/users", h.GetUsers)
			admin.POST("/users", h.AddUser)
			admin.PUT("/users/:id", h.UpdateUser)
			admin.DELETE("/users/:id", h.DeleteUser)
			admin.POST("/users/:id/transfer-ownership", h.TransferOwnership)

			admin.GET("/reports", h.GetSalesReport)
			admin.GET("/reports/categories", h.GetCategorySales)
			admin.GET("/audit-logs", h.GetAuditLogs)
			admin.GET("/backup/export", h.ExportBackup)
			admin.POST("/backup/import", h.ImportBackup)
			admin.POST("/system/reset", h.ResetData)
			admin.POST("/ask", h.AskAI)
		}
	}
}

// conflicts are rejections caused by existing state rather than bad input.
var conflicts = map[string]bool{
	auth.MsgUsernameExists:                true,
	auth.MsgUsernameTaken:                 true,
	auth.MsgSingleOwner:                   true,
	auth.MsgDeleteSoleOwner:               true,
	auth.MsgDemoteSoleOwner:               true,
	auth.MsgAlreadyOwner:                  true,
	repository.MsgCustomerHasTransactions: true,
	repository.MsgAlreadyVoided:           true,
	repository.MsgDuplicateID:             true,
	repository.MsgCategoryExists:          true,
}

var notFound = map[string]bool{
	auth.MsgUserNotFound:              true,
	repository.MsgProductNotFound:     true,
	repository.MsgCustomerNotFound:    true,
	repository.MsgTransactionNotFound: true,
	repository.MsgCategoryNotFound:    true,
}

func statusFor(res models.Result) int {
	switch {
	case conflicts[res.Message]:
		return http.StatusConflict
	case notFound[res.Message]:
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// respond writes the outcome of a mutation. A storage fault is a 500; a rejected
// Result is a 4xx carrying its message; otherwise body (or the Result) is sent with status.
func (h *Handler) respond(c *gin.Context, res models.Result, err error, status int, body any) {
	if err != nil {
		h.app.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save changes"})
		return
	}
	if !res.Success {
		c.JSON(statusFor(res), res)
		return
	}
	if body == nil {
		body = res
	}
	c.JSON(status, body)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return false
	}
	return true
}
