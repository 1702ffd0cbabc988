package repository

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/securestore"
)

const (
	MsgCustomerNameRequired    = "Customer name is required"
	MsgCustomerNotFound        = "Customer not found"
	MsgCustomerHasTransactions = "Cannot delete customer with existing transactions."
)

// Customers returns every customer in insertion order.
func (r *Repository) Customers() []models.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.customers)
}

// Customer looks a customer up by id.
func (r *Repository) Customer(id int64) (models.Customer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.customerIndex(id); i >= 0 {
		return r.customers[i], true
	}
	return models.Customer{}, false
}

// AddCustomer stores a new customer. Any spend supplied by the caller is ignored.
func (r *Repository) AddCustomer(c models.Customer, actor string) (models.Customer, models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.Name = strings.TrimSpace(c.Name)
	if _, ok := models.Check(c); !ok {
		return models.Customer{}, models.Fail(MsgCustomerNameRequired), nil
	}
	c.ID = r.nextCustomerID()
	c.Spend = decimal.Zero

	customers := append(slices.Clone(r.customers), c)
	if err := r.store.Write(securestore.KeyCustomers, customers); err != nil {
		return models.Customer{}, models.Result{}, fmt.Errorf("repository: add customer: %w", err)
	}
	r.customers = customers

	return c, models.OK(), r.record(audit.ActionAddCustomer, "Added customer: "+c.Name, actor)
}

// EditCustomer updates name, phone and email. Spend only moves with transactions.
func (r *Repository) EditCustomer(id int64, patch models.CustomerPatch, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.customerIndex(id)
	if i < 0 {
		return models.Fail(MsgCustomerNotFound), nil
	}

	c := r.customers[i]
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if _, ok := models.Check(c); !ok {
		return models.Fail(MsgCustomerNameRequired), nil
	}

	customers := slices.Clone(r.customers)
	customers[i] = c
	if err := r.store.Write(securestore.KeyCustomers, customers); err != nil {
		return models.Result{}, fmt.Errorf("repository: edit customer: %w", err)
	}
	r.customers = customers

	return models.OK(), r.record(audit.ActionEditCustomer, "Updated customer: "+c.Name, actor)
}

// DeleteCustomer removes a customer that no transaction refers to, voided ones included.
func (r *Repository) DeleteCustomer(id int64, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.customerIndex(id)
	if i < 0 {
		return models.Fail(MsgCustomerNotFound), nil
	}
	for _, tx := range r.transactions {
		if tx.CustomerID != nil && *tx.CustomerID == id {
			return models.Fail(MsgCustomerHasTransactions), nil
		}
	}
	name := r.customers[i].Name

	customers := append(slices.Clone(r.customers[:i]), r.customers[i+1:]...)
	if err := r.store.Write(securestore.KeyCustomers, customers); err != nil {
		return models.Result{}, fmt.Errorf("repository: delete customer: %w", err)
	}
	r.customers = customers

	return models.OK(), r.record(audit.ActionDeleteCustomer, "Deleted customer: "+name, actor)
}

func (r *Repository) customerIndex(id int64) int {
	for i, c := range r.customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) nextCustomerID() int64 {
	var last int64
	for _, c := range r.customers {
		if c.ID > last {
			last = c.ID
		}
	}
	return last + 1
}
