package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-pos-vault/internal/middleware"
	"go-pos-vault/internal/models"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login starts the terminal session and hands out a token for the API.
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if !bind(c, &input) {
		return
	}

	// 2. Check the credentials against the vault
	res, err := h.app.Vault.Login(input.Username, input.Password)
	if err != nil {
		h.respond(c, res, err, 0, nil)
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnauthorized, res)
		return
	}

	// 3. Generate JWT Token for the new session
	session, ok := h.app.Vault.CurrentUser()
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session was not started"})
		return
	}
	token, err := h.app.Tokens.GenerateToken(session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// 4. Success! Return Token and Role
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"id":       session.UserID,
		"role":     session.Role,
		"username": session.Username,
		"name":     session.Name,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.app.Vault.Logout(); err != nil {
		h.respond(c, models.Result{}, err, 0, nil)
		return
	}
	c.JSON(http.StatusOK, models.OK())
}

// GetSession returns the user logged in at the terminal, if any.
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.app.Vault.CurrentUser()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session})
}

func (h *Handler) GetUsers(c *gin.Context) {
	users := h.app.Vault.Users()
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) AddUser(c *gin.Context) {
	var input models.UserInput
	if !bind(c, &input) {
		return
	}
	user, res, err := h.app.Vault.AddUser(input, middleware.Actor(c))
	h.respond(c, res, err, http.StatusCreated, user.Public())
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.UserPatch
	if !bind(c, &patch) {
		return
	}
	res, err := h.app.Vault.UpdateUser(id, patch, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.app.Vault.DeleteUser(id, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

// TransferOwnership makes another user the owner and the current owner a cashier.
func (h *Handler) TransferOwnership(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.app.Vault.TransferOwnership(id, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}
