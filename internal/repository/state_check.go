package repository

import (
	"fmt"
	"strings"

	"go-pos-vault/internal/models"
)

const (
	MsgDuplicateProductID    = "Duplicate product ID"
	MsgDuplicateCustomerID   = "Duplicate customer ID"
	MsgNegativeSpend         = "Customer spend cannot be negative"
	MsgTransactionIDRequired = "Transaction ID is required"
)

// CheckState reports the first record in s that the repository would refuse
// to hold, naming the collection and id. Audit entries are taken as they are.
//
// Recorded totals may carry floating point noise from older clients, so
// total = subtotal + tax is compared to the cent.
func CheckState(s State) models.Result {
	products := make(map[int64]bool, len(s.Products))
	for _, p := range s.Products {
		if res := checkProduct(p); !res.Success {
			return failAt("product", p.ID, res.Message)
		}
		if products[p.ID] {
			return failAt("product", p.ID, MsgDuplicateProductID)
		}
		products[p.ID] = true
	}

	customers := make(map[int64]bool, len(s.Customers))
	for _, c := range s.Customers {
		if _, ok := models.Check(c); !ok {
			return failAt("customer", c.ID, MsgCustomerNameRequired)
		}
		if c.Spend.IsNegative() {
			return failAt("customer", c.ID, MsgNegativeSpend)
		}
		if customers[c.ID] {
			return failAt("customer", c.ID, MsgDuplicateCustomerID)
		}
		customers[c.ID] = true
	}

	transactions := make(map[string]bool, len(s.Transactions))
	for i, tx := range s.Transactions {
		if tx.ID == "" {
			return failAt("transaction", fmt.Sprintf("#%d", i+1), MsgTransactionIDRequired)
		}
		if res := checkAmounts(tx); !res.Success {
			return failAt("transaction", tx.ID, res.Message)
		}
		if !tx.Total.Round(2).Equal(tx.Subtotal.Add(tx.Tax).Round(2)) {
			return failAt("transaction", tx.ID, MsgTotalMismatch)
		}
		if transactions[tx.ID] {
			return failAt("transaction", tx.ID, MsgDuplicateID)
		}
		transactions[tx.ID] = true
	}

	categories := make(map[string]bool, len(s.Categories))
	for _, name := range s.Categories {
		if strings.TrimSpace(name) == "" {
			return models.Fail("category: " + MsgCategoryRequired)
		}
		if categories[name] {
			return models.Fail(fmt.Sprintf("category %s: %s", name, MsgCategoryExists))
		}
		categories[name] = true
	}

	if _, ok := models.Check(s.Settings); !ok {
		return models.Fail("settings: " + MsgNegativeTaxRate)
	}
	return models.OK()
}

func failAt(kind string, id any, message string) models.Result {
	return models.Fail(fmt.Sprintf("%s %v: %s", kind, id, message))
}
