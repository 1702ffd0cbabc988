package ai

import (
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"

	"go-pos-vault/internal/models"
	"go-pos-vault/internal/repository"
)

const dateLayout = "2006-01-02"

// Toolbox runs the assistant's function calls. Every write goes through the
// repository, so it is validated and audited like any other edit; actor is the
// label those audit entries carry.
type Toolbox struct {
	repo  *repository.Repository
	actor string
}

// NewToolbox returns tools acting on repo on behalf of actor.
func NewToolbox(repo *repository.Repository, actor string) *Toolbox {
	return &Toolbox{repo: repo, actor: actor}
}

// Declarations describes the tools to the model.
func (t *Toolbox) Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "check_inventory",
			Description: "Get the full product list. Use this to find ANY product details like ID, Name, Category or Price.",
		},
		{
			Name:        "update_product_price",
			Description: "Update the price of a specific product using its ID",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeInteger, Description: "ID of the product"},
					"new_price":  {Type: genai.TypeNumber, Description: "New price"},
				},
				Required: []string{"product_id", "new_price"},
			},
		},
		{
			Name:        "create_product",
			Description: "Add a new product to the catalogue",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     {Type: genai.TypeString, Description: "Name of the product"},
					"price":    {Type: genai.TypeNumber, Description: "Price of the product"},
					"category": {Type: genai.TypeString, Description: "One of the store's categories"},
				},
				Required: []string{"name", "price", "category"},
			},
		},
		{
			Name:        "get_sales_report",
			Description: "Get total successful sales revenue and order count for a date range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD), inclusive"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        "get_top_selling",
			Description: "List the best selling products by units sold.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"limit": {Type: genai.TypeInteger, Description: "How many products to return (default 5)"},
				},
			},
		},
		{
			Name:        "get_dashboard",
			Description: "Get all-time totals: sales, order count, customers and pending orders.",
		},
	}
}

// Call runs one tool and returns the payload sent back to the model. Bad
// arguments are reported in the payload rather than as errors so the model
// can correct itself.
func (t *Toolbox) Call(name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "check_inventory":
		return t.inventory(), nil
	case "update_product_price":
		return t.updatePrice(args)
	case "create_product":
		return t.createProduct(args)
	case "get_sales_report":
		return t.salesReport(args), nil
	case "get_top_selling":
		limit := 5
		if n, ok := args["limit"].(float64); ok && n > 0 {
			limit = int(n)
		}
		return map[string]any{"top_selling": t.repo.TopSelling(limit)}, nil
	case "get_dashboard":
		d := t.repo.Dashboard()
		return map[string]any{
			"total_sales":     d.TotalSales.InexactFloat64(),
			"total_orders":    d.TotalOrders,
			"total_customers": d.TotalCustomers,
			"pending_orders":  d.PendingOrders,
		}, nil
	}
	return failure("unknown tool " + name), nil
}

func (t *Toolbox) inventory() map[string]any {
	type item struct {
		ID       int64   `json:"id"`
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
	}
	products := t.repo.Products()
	list := make([]item, 0, len(products))
	for _, p := range products {
		list = append(list, item{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price.InexactFloat64()})
	}
	return map[string]any{"inventory": list, "categories": t.repo.Categories()}
}

func (t *Toolbox) updatePrice(args map[string]any) (map[string]any, error) {
	id, ok := args["product_id"].(float64)
	if !ok {
		return failure("product_id must be a number"), nil
	}
	price, ok := args["new_price"].(float64)
	if !ok {
		return failure("new_price must be a number"), nil
	}

	newPrice := decimal.NewFromFloat(price)
	res, err := t.repo.EditProduct(int64(id), models.ProductPatch{Price: &newPrice}, t.actor)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return failure(res.Message), nil
	}
	return map[string]any{"status": "Success", "new_price": price}, nil
}

func (t *Toolbox) createProduct(args map[string]any) (map[string]any, error) {
	name, _ := args["name"].(string)
	category, _ := args["category"].(string)
	price, ok := args["price"].(float64)
	if !ok {
		return failure("price must be a number"), nil
	}

	p, res, err := t.repo.AddProduct(models.Product{
		Name:     name,
		Category: strings.TrimSpace(category),
		Price:    decimal.NewFromFloat(price),
	}, t.actor)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return failure(res.Message), nil
	}
	return map[string]any{"status": "created", "id": p.ID}, nil
}

func (t *Toolbox) salesReport(args map[string]any) map[string]any {
	startStr, _ := args["start_date"].(string)
	endStr, _ := args["end_date"].(string)
	start, err1 := time.Parse(dateLayout, startStr)
	end, err2 := time.Parse(dateLayout, endStr)
	if err1 != nil || err2 != nil {
		return failure("Dates must be in YYYY-MM-DD format.")
	}

	report := t.repo.SalesReport(start, endOfDay(end))
	return map[string]any{
		"revenue":     report.TotalRevenue.InexactFloat64(),
		"sales_count": report.TotalCount,
	}
}

func endOfDay(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Nanosecond)
}

func failure(msg string) map[string]any {
	return map[string]any{"status": "error", "message": msg}
}
