package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-pos-vault/internal/middleware"
	"go-pos-vault/internal/models"
)

// SaleRequest is what the till sends at checkout
type SaleRequest struct {
	Items      []models.CartLine `json:"items"`
	CustomerID *int64            `json:"customerId"`
}

// ProcessSale prices the cart from the catalogue and the store's tax rate.
func (h *Handler) ProcessSale(c *gin.Context) {
	var req SaleRequest
	if !bind(c, &req) {
		return
	}
	tx, res, err := h.app.Repo.Checkout(req.Items, req.CustomerID, middleware.Actor(c))
	h.respond(c, res, err, http.StatusCreated, tx)
}

// AddTransaction records a sale priced elsewhere, e.g. re-entered from paper.
func (h *Handler) AddTransaction(c *gin.Context) {
	var tx models.Transaction
	if !bind(c, &tx) {
		return
	}
	created, res, err := h.app.Repo.AddTransaction(tx, middleware.Actor(c))
	h.respond(c, res, err, http.StatusCreated, created)
}

func (h *Handler) GetTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.Transactions())
}

func (h *Handler) VoidTransaction(c *gin.Context) {
	res, err := h.app.Repo.VoidTransaction(c.Param("id"), middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

func (h *Handler) GetCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.Customers())
}

func (h *Handler) AddCustomer(c *gin.Context) {
	var customer models.Customer
	if !bind(c, &customer) {
		return
	}
	created, res, err := h.app.Repo.AddCustomer(customer, middleware.Actor(c))
	h.respond(c, res, err, http.StatusCreated, created)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.CustomerPatch
	if !bind(c, &patch) {
		return
	}
	res, err := h.app.Repo.EditCustomer(id, patch, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.app.Repo.DeleteCustomer(id, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}
