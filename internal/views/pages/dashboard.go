package pages

import (
	"strings"

	"carinderia/internal/inventory"
	"carinderia/internal/views/components"
)

// DashboardRow is one stock lot as displayed on the dashboard.
type DashboardRow struct {
	OrderID      uint
	IngredientID uint
	Name         string
	Category     string
	Supplier     string
	Location     string
	Quantity     string
	Unit         string
	Received     string
	Status       string
	Label        string
	Problem      string
}

// StatusCount is the number of displayed lots in one status.
type StatusCount struct {
	Status string
	Title  string
	Count  int
}

// DashboardData is everything the dashboard renders.
type DashboardData struct {
	UserName       string
	Today          string
	ActiveCategory string
	Search         string
	Tabs           []components.Tab
	Rows           []DashboardRow
	Counts         []StatusCount
}

var statusTitles = map[inventory.Status]string{
	inventory.StatusExpired:       "Expired",
	inventory.StatusExpiresToday:  "Expires today",
	inventory.StatusCritical:      "Use soon",
	inventory.StatusSafe:          "Fresh",
	inventory.StatusLongShelfLife: "Shelf stable",
	inventory.StatusUnknown:       "No spoilage data",
}

// NewDashboardData projects lot views, already sorted, into dashboard rows.
func NewDashboardData(views []inventory.LotView, categories []string, activeCategory, search string) DashboardData {
	data := DashboardData{
		ActiveCategory: normalizeCategory(activeCategory),
		Search:         strings.TrimSpace(search),
		Tabs:           categoryTabs(categories),
		Rows:           make([]DashboardRow, 0, len(views)),
	}

	counts := make(map[inventory.Status]int)
	for _, view := range views {
		counts[view.Expiry.Status]++
		data.Rows = append(data.Rows, DashboardRow{
			OrderID:      view.OrderID,
			IngredientID: view.IngredientID,
			Name:         view.IngredientName,
			Category:     view.Category,
			Supplier:     view.SupplierName,
			Location:     DefaultDash(view.Location),
			Quantity:     view.CurrentQuantity.String(),
			Unit:         view.Unit,
			Received:     FormatDate(view.DateReceived),
			Status:       StatusClass(view.Expiry.Status),
			Label:        inventory.DaysLeftLabel(view.Expiry),
			Problem:      view.Problem,
		})
	}
	for _, status := range inventory.Statuses() {
		data.Counts = append(data.Counts, StatusCount{
			Status: status.String(),
			Title:  statusTitles[status],
			Count:  counts[status],
		})
	}
	return data
}

func categoryTabs(categories []string) []components.Tab {
	tabs := []components.Tab{{Label: "All", Value: "all"}}
	for _, category := range categories {
		tabs = append(tabs, components.Tab{Label: category, Value: category})
	}
	return tabs
}

func normalizeCategory(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "all"
	}
	return trimmed
}

func displayName(user string) string {
	if strings.TrimSpace(user) == "" {
		return "Kitchen"
	}
	return user
}

func categoryParam(active string) string {
	if strings.EqualFold(active, "all") {
		return ""
	}
	return active
}
