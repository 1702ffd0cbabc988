package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"go-pos-vault/internal/models"
)

func seedSales(t *testing.T, r *Repository) (models.Product, models.Product) {
	t.Helper()
	coffee := mustAddProduct(t, r, "Kopi", "10000")
	cake := mustAddProduct(t, r, "Kue", "20000")
	_, err := r.EditProduct(cake.ID, models.ProductPatch{Category: ptr("Bakery")}, "admin")
	require.NoError(t, err)
	c := mustAddCustomer(t, r, "Lina")

	day := func(d int) time.Time { return time.Date(2026, 10, d, 12, 0, 0, 0, time.UTC) }
	sales := []struct {
		date   time.Time
		items  []models.LineItem
		status models.TransactionStatus
	}{
		{day(1), []models.LineItem{{ProductID: coffee.ID, Name: "Kopi", Price: money("10000"), Quantity: 3}}, models.StatusSuccess},
		{day(5), []models.LineItem{{ProductID: cake.ID, Name: "Kue", Price: money("20000"), Quantity: 1}}, models.StatusSuccess},
		{day(9), []models.LineItem{{ProductID: cake.ID, Name: "Kue", Price: money("20000"), Quantity: 5}}, models.StatusPending},
	}
	for _, s := range sales {
		subtotal := decimal.Zero
		for _, item := range s.items {
			subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		_, res, err := r.AddTransaction(models.Transaction{
			Date:       s.date,
			CustomerID: &c.ID,
			Items:      s.items,
			Subtotal:   subtotal,
			Tax:        decimal.Zero,
			Total:      subtotal,
			Status:     s.status,
		}, "cashier")
		require.NoError(t, err)
		require.True(t, res.Success, res.Message)
	}
	return coffee, cake
}

func TestDashboard(t *testing.T) {
	r, _, _ := newTestRepo(t)
	seedSales(t, r)

	tx := r.Transactions()[2] // oldest: the coffee sale
	_, err := r.VoidTransaction(tx.ID, "admin")
	require.NoError(t, err)

	d := r.Dashboard()
	assertMoney(t, "20000", d.TotalSales)
	assert.Equal(t, 1, d.TotalOrders)
	assert.Equal(t, 1, d.PendingOrders)
	assert.Equal(t, 1, d.TotalCustomers)
}

func TestSalesReport_DateRange(t *testing.T) {
	r, _, _ := newTestRepo(t)
	seedSales(t, r)

	all := r.SalesReport(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC))
	assertMoney(t, "50000", all.TotalRevenue)
	assert.Equal(t, int64(2), all.TotalCount)

	firstWeek := r.SalesReport(time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC))
	assertMoney(t, "20000", firstWeek.TotalRevenue)
	assert.Equal(t, int64(1), firstWeek.TotalCount)

	none := r.SalesReport(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, none.TotalRevenue.IsZero())
	assert.Zero(t, none.TotalCount)
}

func TestTopSelling(t *testing.T) {
	r, _, _ := newTestRepo(t)
	seedSales(t, r)

	top := r.TopSelling(5)
	require.Len(t, top, 2)
	assert.Equal(t, "Kopi", top[0].ProductName)
	assert.Equal(t, 3, top[0].Sold)
	assertMoney(t, "30000", top[0].Revenue)
	assert.Equal(t, "Kue", top[1].ProductName)
	assert.Equal(t, 1, top[1].Sold, "pending sales are not counted")

	assert.Len(t, r.TopSelling(1), 1)
}

func TestSalesByCategory(t *testing.T) {
	r, _, _ := newTestRepo(t)
	coffee, _ := seedSales(t, r)

	_, err := r.DeleteProduct(coffee.ID, "admin")
	require.NoError(t, err)

	groups := r.SalesByCategory()
	require.Len(t, groups, 2)
	assert.Equal(t, "Uncategorized", groups[0].Category)
	assertMoney(t, "30000", groups[0].Revenue)
	assert.Equal(t, "Bakery", groups[1].Category)
	assert.Equal(t, 1, groups[1].Sold)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rp 55,500", FormatMoney(money("55500"), "Rp", language.English))
	assert.Equal(t, "$ 1,234.5", FormatMoney(money("1234.50"), "$", language.English))
}
