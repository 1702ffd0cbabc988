package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-pos-vault/internal/middleware"
	"go-pos-vault/internal/models"
)

// --- GET: List all products ---
func (h *Handler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.Products())
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	var p models.Product
	if !bind(c, &p) {
		return
	}
	created, res, err := h.app.Repo.AddProduct(p, middleware.Actor(c))
	h.respond(c, res, err, http.StatusCreated, created)
}

// --- PUT: Partial update, only the fields sent are changed ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !bind(c, &patch) {
		return
	}
	res, err := h.app.Repo.EditProduct(id, patch, middleware.Actor(c))
	if err != nil || !res.Success {
		h.respond(c, res, err, 0, nil)
		return
	}
	product, _ := h.app.Repo.Product(id)
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// --- DELETE: Past sales keep their own copy of the product ---
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.app.Repo.DeleteProduct(id, middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.Categories())
}

type CategoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) AddCategory(c *gin.Context) {
	var req CategoryRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.app.Repo.AddCategory(req.Name, middleware.Actor(c))
	h.respond(c, res, err, http.StatusCreated, nil)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	res, err := h.app.Repo.DeleteCategory(c.Param("name"), middleware.Actor(c))
	h.respond(c, res, err, http.StatusOK, nil)
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// --- UPLOAD: product images, served back under /uploads ---
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed"})
		return
	}

	filename := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.app.Config.UploadDir, filename)); err != nil {
		h.app.Logger.Error("failed to save upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     fmt.Sprintf("%s/uploads/%s", strings.TrimRight(h.app.Config.BaseURL, "/"), filename),
	})
}
