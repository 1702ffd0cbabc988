package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-pos-vault/internal/models"
	"go-pos-vault/internal/repository"
)

const dateLayout = "2006-01-02"

// ReportData defines the shape of our analytics response
type ReportData struct {
	TotalRevenue decimal.Decimal        `json:"total_revenue"`
	TotalOrders  int64                  `json:"total_orders"`
	TopSelling   []repository.TopSeller `json:"top_selling"`
	RecentSales  []models.Transaction   `json:"recent_sales"`
	Start        *time.Time             `json:"start,omitempty"`
	End          *time.Time             `json:"end,omitempty"`
}

// --- GET: /api/reports?start=YYYY-MM-DD&end=YYYY-MM-DD ---
// Without a range the totals are all-time.
func (h *Handler) GetSalesReport(c *gin.Context) {
	var data ReportData
	repo := h.app.Repo

	startStr, endStr := c.Query("start"), c.Query("end")
	if startStr != "" || endStr != "" {
		start, err1 := time.Parse(dateLayout, startStr)
		end, err2 := time.Parse(dateLayout, endStr)
		if err1 != nil || err2 != nil || end.Before(start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be YYYY-MM-DD, start first"})
			return
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		report := repo.SalesReport(start, end)
		data.TotalRevenue, data.TotalOrders = report.TotalRevenue, report.TotalCount
		data.Start, data.End = &start, &end
	} else {
		d := repo.Dashboard()
		data.TotalRevenue, data.TotalOrders = d.TotalSales, int64(d.TotalOrders)
	}

	data.TopSelling = repo.TopSelling(5)
	data.RecentSales = repo.RecentTransactions(10)
	c.JSON(http.StatusOK, data)
}

// --- GET: /api/reports/dashboard ---
func (h *Handler) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.Dashboard())
}

// --- GET: /api/reports/categories ---
func (h *Handler) GetCategorySales(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Repo.SalesByCategory())
}
