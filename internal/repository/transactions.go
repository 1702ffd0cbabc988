package repository

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/securestore"
)

const maxIDAttempts = 16

const (
	MsgTransactionNotFound = "Transaction not found"
	MsgAlreadyVoided       = "Transaction already voided"
	MsgDuplicateID         = "Transaction ID already exists"
	MsgVoidOnAdd           = "Cannot record a voided transaction"
	MsgTotalMismatch       = "Transaction total must equal subtotal plus tax"
	MsgNegativeAmount      = "Amounts cannot be negative"
	MsgInvalidQuantity     = "Quantity must be at least 1"
	MsgInvalidStatus       = "Invalid transaction status"
	MsgEmptyCart           = "Cart is empty"

	// WalkInGuest names the buyer of a sale with no customer attached.
	WalkInGuest = "Walk-in Guest"
)

var hundred = decimal.NewFromInt(100)

// Transactions returns every transaction, newest first.
func (r *Repository) Transactions() []models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneTransactions(r.transactions)
}

// Transaction looks a transaction up by id.
func (r *Repository) Transaction(id string) (models.Transaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.transactionIndex(id); i >= 0 {
		return cloneTransactions(r.transactions[i : i+1])[0], true
	}
	return models.Transaction{}, false
}

// AddTransaction records a sale and adds its total to the customer's spend.
// An empty id is generated; an empty status means Success.
func (r *Repository) AddTransaction(tx models.Transaction, actor string) (models.Transaction, models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addTransaction(tx, actor)
}

func (r *Repository) addTransaction(tx models.Transaction, actor string) (models.Transaction, models.Result, error) {
	if tx.Status == "" {
		tx.Status = models.StatusSuccess
	}
	if res := checkTransaction(tx); !res.Success {
		return models.Transaction{}, res, nil
	}

	if tx.ID == "" {
		id, err := r.freshTransactionID()
		if err != nil {
			return models.Transaction{}, models.Result{}, err
		}
		tx.ID = id
	} else if r.transactionIndex(tx.ID) >= 0 {
		return models.Transaction{}, models.Fail(MsgDuplicateID), nil
	}

	customers := r.customers
	if tx.CustomerID != nil {
		ci := r.customerIndex(*tx.CustomerID)
		if ci < 0 {
			return models.Transaction{}, models.Fail(MsgCustomerNotFound), nil
		}
		if tx.Customer == "" {
			tx.Customer = r.customers[ci].Name
		}
		customers = slices.Clone(r.customers)
		customers[ci].Spend = customers[ci].Spend.Add(tx.Total)
	} else if tx.Customer == "" {
		tx.Customer = WalkInGuest
	}
	if tx.Date.IsZero() {
		tx.Date = r.clock()
	}
	tx = cloneTransactions([]models.Transaction{tx})[0]

	transactions := append([]models.Transaction{tx}, r.transactions...)
	changes := []change{{securestore.KeyTransactions, transactions, r.transactions}}
	if tx.CustomerID != nil {
		changes = append(changes, change{securestore.KeyCustomers, customers, r.customers})
	}
	if err := r.persist(changes...); err != nil {
		return models.Transaction{}, models.Result{}, fmt.Errorf("repository: add transaction: %w", err)
	}
	r.transactions = transactions
	r.customers = customers

	details := fmt.Sprintf("Transaction %s for %s, total %s", tx.ID, tx.Customer, tx.Total.String())
	return tx, models.OK(), r.record(audit.ActionAddTransaction, details, actor)
}

// Checkout prices a cart from the current catalogue and settings and records it as a
// successful sale. customerID may be nil for a walk-in guest.
func (r *Repository) Checkout(cart []models.CartLine, customerID *int64, actor string) (models.Transaction, models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(cart) == 0 {
		return models.Transaction{}, models.Fail(MsgEmptyCart), nil
	}

	items := make([]models.LineItem, 0, len(cart))
	subtotal := decimal.Zero
	for _, line := range cart {
		pi := r.productIndex(line.ProductID)
		if pi < 0 {
			return models.Transaction{}, models.Fail(MsgProductNotFound), nil
		}
		if line.Quantity < 1 {
			return models.Transaction{}, models.Fail(MsgInvalidQuantity), nil
		}
		p := r.products[pi]
		items = append(items, models.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(r.settings.TaxRate).Div(hundred).Round(2)
	tx := models.Transaction{
		CustomerID: customerID,
		Items:      items,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      subtotal.Add(tax),
		Status:     models.StatusSuccess,
	}
	return r.addTransaction(tx, actor)
}

// VoidTransaction marks a sale void and takes its total back off the customer's spend.
// A transaction can only be voided once; rows are never removed.
func (r *Repository) VoidTransaction(id, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ti := r.transactionIndex(id)
	if ti < 0 {
		return models.Fail(MsgTransactionNotFound), nil
	}
	tx := r.transactions[ti]
	if tx.Status == models.StatusVoid {
		return models.Fail(MsgAlreadyVoided), nil
	}

	transactions := slices.Clone(r.transactions)
	transactions[ti].Status = models.StatusVoid
	changes := []change{{securestore.KeyTransactions, transactions, r.transactions}}

	customers := r.customers
	if tx.CustomerID != nil {
		// Imported data may reference a customer that no longer exists.
		if ci := r.customerIndex(*tx.CustomerID); ci >= 0 {
			customers = slices.Clone(r.customers)
			customers[ci].Spend = customers[ci].Spend.Sub(tx.Total)
			changes = append(changes, change{securestore.KeyCustomers, customers, r.customers})
		}
	}
	if err := r.persist(changes...); err != nil {
		return models.Result{}, fmt.Errorf("repository: void transaction: %w", err)
	}
	r.transactions = transactions
	r.customers = customers

	details := fmt.Sprintf("Voided transaction %s, total %s", tx.ID, tx.Total.String())
	return models.OK(), r.record(audit.ActionVoidTransaction, details, actor)
}

// freshTransactionID draws ids until one is unused.
func (r *Repository) freshTransactionID() (string, error) {
	for range maxIDAttempts {
		if id := r.newTxID(); r.transactionIndex(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("repository: no unused transaction id after %d attempts", maxIDAttempts)
}

func checkTransaction(tx models.Transaction) models.Result {
	if tx.Status == models.StatusVoid {
		return models.Fail(MsgVoidOnAdd)
	}
	if res := checkAmounts(tx); !res.Success {
		return res
	}
	if !tx.Total.Equal(tx.Subtotal.Add(tx.Tax)) {
		return models.Fail(MsgTotalMismatch)
	}
	return models.OK()
}

func checkAmounts(tx models.Transaction) models.Result {
	if violation, ok := models.Check(tx); !ok {
		switch violation.Field {
		case "Quantity":
			return models.Fail(MsgInvalidQuantity)
		case "Status":
			return models.Fail(MsgInvalidStatus)
		}
		return models.Fail(MsgNegativeAmount)
	}
	return models.OK()
}

func (r *Repository) transactionIndex(id string) int {
	for i, tx := range r.transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
