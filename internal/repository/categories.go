package repository

import (
	"fmt"
	"slices"
	"strings"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/securestore"
)

const (
	MsgCategoryRequired = "Category name is required"
	MsgCategoryExists   = "Category already exists"
	MsgCategoryNotFound = "Category not found"
)

// Categories returns the category names in the order they were added.
func (r *Repository) Categories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.categories)
}

// AddCategory appends a new category name. Names are compared exactly.
func (r *Repository) AddCategory(name, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Fail(MsgCategoryRequired), nil
	}
	if slices.Contains(r.categories, name) {
		return models.Fail(MsgCategoryExists), nil
	}

	categories := append(slices.Clone(r.categories), name)
	if err := r.store.Write(securestore.KeyCategories, categories); err != nil {
		return models.Result{}, fmt.Errorf("repository: add category: %w", err)
	}
	r.categories = categories

	return models.OK(), r.record(audit.ActionAddCategory, "Added category: "+name, actor)
}

// DeleteCategory removes a category name. Products filed under it keep the name.
func (r *Repository) DeleteCategory(name, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.categories, name)
	if i < 0 {
		return models.Fail(MsgCategoryNotFound), nil
	}

	categories := slices.Delete(slices.Clone(r.categories), i, i+1)
	if err := r.store.Write(securestore.KeyCategories, categories); err != nil {
		return models.Result{}, fmt.Errorf("repository: delete category: %w", err)
	}
	r.categories = categories

	return models.OK(), r.record(audit.ActionDeleteCategory, "Deleted category: "+name, actor)
}
