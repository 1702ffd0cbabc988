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
	MsgProductNameRequired = "Product name is required"
	MsgNegativePrice       = "Price cannot be negative"
	MsgProductNotFound     = "Product not found"
)

// Products returns every product in insertion order.
func (r *Repository) Products() []models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.products)
}

// Product looks a product up by id.
func (r *Repository) Product(id int64) (models.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.productIndex(id); i >= 0 {
		return r.products[i], true
	}
	return models.Product{}, false
}

// AddProduct assigns an id to p and stores it.
func (r *Repository) AddProduct(p models.Product, actor string) (models.Product, models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Name = strings.TrimSpace(p.Name)
	if res := checkProduct(p); !res.Success {
		return models.Product{}, res, nil
	}

	p.ID = r.nextProductID()
	products := append(slices.Clone(r.products), p)
	if err := r.store.Write(securestore.KeyProducts, products); err != nil {
		return models.Product{}, models.Result{}, fmt.Errorf("repository: add product: %w", err)
	}
	r.products = products

	return p, models.OK(), r.record(audit.ActionAddProduct, "Added product: "+p.Name, actor)
}

// EditProduct applies patch to the product with the given id.
func (r *Repository) EditProduct(id int64, patch models.ProductPatch, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.productIndex(id)
	if i < 0 {
		return models.Fail(MsgProductNotFound), nil
	}

	p := r.products[i]
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if res := checkProduct(p); !res.Success {
		return res, nil
	}

	products := slices.Clone(r.products)
	products[i] = p
	if err := r.store.Write(securestore.KeyProducts, products); err != nil {
		return models.Result{}, fmt.Errorf("repository: edit product: %w", err)
	}
	r.products = products

	return models.OK(), r.record(audit.ActionEditProduct, "Updated product: "+p.Name, actor)
}

// DeleteProduct removes a product. Past transactions keep their own snapshot of it.
func (r *Repository) DeleteProduct(id int64, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.productIndex(id)
	if i < 0 {
		return models.Fail(MsgProductNotFound), nil
	}
	name := r.products[i].Name

	products := append(slices.Clone(r.products[:i]), r.products[i+1:]...)
	if err := r.store.Write(securestore.KeyProducts, products); err != nil {
		return models.Result{}, fmt.Errorf("repository: delete product: %w", err)
	}
	r.products = products

	return models.OK(), r.record(audit.ActionDeleteProduct, "Deleted product: "+name, actor)
}

func checkProduct(p models.Product) models.Result {
	violation, ok := models.Check(p)
	if ok {
		return models.OK()
	}
	if violation.Field == "Price" {
		return models.Fail(MsgNegativePrice)
	}
	return models.Fail(MsgProductNameRequired)
}

func (r *Repository) productIndex(id int64) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) nextProductID() int64 {
	var last int64
	for _, p := range r.products {
		if p.ID > last {
			last = p.ID
		}
	}
	return last + 1
}
