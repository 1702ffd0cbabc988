package repository

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"go-pos-vault/internal/models"
)

// Only Success transactions count towards revenue. Pending sales show up in
// PendingOrders; voided ones are ignored.

// Dashboard is the summary shown on the home screen.
type Dashboard struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalOrders    int             `json:"totalOrders"`
	TotalCustomers int             `json:"totalCustomers"`
	PendingOrders  int             `json:"pendingOrders"`
}

// Dashboard returns the all-time summary.
func (r *Repository) Dashboard() Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := Dashboard{TotalSales: decimal.Zero, TotalCustomers: len(r.customers)}
	for _, tx := range r.transactions {
		switch tx.Status {
		case models.StatusSuccess:
			d.TotalSales = d.TotalSales.Add(tx.Total)
			d.TotalOrders++
		case models.StatusPending:
			d.PendingOrders++
		}
	}
	return d
}

// SalesReportResult holds revenue and order count for a period.
type SalesReportResult struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalCount   int64           `json:"totalCount"`
}

// SalesReport sums successful sales dated within [start, end].
func (r *Repository) SalesReport(start, end time.Time) SalesReportResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := SalesReportResult{TotalRevenue: decimal.Zero}
	for _, tx := range r.transactions {
		if tx.Status != models.StatusSuccess || tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		res.TotalRevenue = res.TotalRevenue.Add(tx.Total)
		res.TotalCount++
	}
	return res
}

// TopSeller is one row of the best-sellers table.
type TopSeller struct {
	ProductName string          `json:"productName"`
	Sold        int             `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// TopSelling ranks products by units sold in successful transactions, using the
// name captured at sale time. Ties are broken by revenue, then name.
func (r *Repository) TopSelling(limit int) []TopSeller {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName := make(map[string]*TopSeller)
	for _, tx := range r.transactions {
		if tx.Status != models.StatusSuccess {
			continue
		}
		for _, item := range tx.Items {
			row, ok := byName[item.Name]
			if !ok {
				row = &TopSeller{ProductName: item.Name, Revenue: decimal.Zero}
				byName[item.Name] = row
			}
			row.Sold += item.Quantity
			row.Revenue = row.Revenue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	rows := make([]TopSeller, 0, len(byName))
	for _, row := range byName {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b TopSeller) int {
		if c := cmp.Compare(b.Sold, a.Sold); c != 0 {
			return c
		}
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductName, b.ProductName)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// RecentTransactions returns up to limit transactions, newest first.
func (r *Repository) RecentTransactions(limit int) []models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	recent := r.transactions
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return cloneTransactions(recent)
}

// CategorySales is the revenue of one category.
type CategorySales struct {
	Category string          `json:"category"`
	Sold     int             `json:"sold"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SalesByCategory groups successful sales by the current category of each product.
// Lines whose product has since been deleted, or has no category, fall under Uncategorized.
func (r *Repository) SalesByCategory() []CategorySales {
	r.mu.Lock()
	defer r.mu.Unlock()

	categoryOf := make(map[int64]string, len(r.products))
	for _, p := range r.products {
		categoryOf[p.ID] = p.Category
	}

	grouped := make(map[string]*CategorySales)
	for _, tx := range r.transactions {
		if tx.Status != models.StatusSuccess {
			continue
		}
		for _, item := range tx.Items {
			name := categoryOf[item.ProductID]
			if name == "" {
				name = "Uncategorized"
			}
			group, ok := grouped[name]
			if !ok {
				group = &CategorySales{Category: name, Revenue: decimal.Zero}
				grouped[name] = group
			}
			group.Sold += item.Quantity
			group.Revenue = group.Revenue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	out := make([]CategorySales, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b CategorySales) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// FormatMoney renders amount with the digit grouping of tag, prefixed by the
// currency symbol, e.g. "Rp 55.500" for Indonesian.
func FormatMoney(amount decimal.Decimal, symbol string, tag language.Tag) string {
	f, _ := amount.Float64()
	p := message.NewPrinter(tag)
	return p.Sprintf("%s %v", symbol, number.Decimal(f, number.MaxFractionDigits(2)))
}
