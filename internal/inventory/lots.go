package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	applog "carinderia/internal/log"
)

// LotSort selects the ordering of lot listings.
type LotSort string

const (
	SortUrgency  LotSort = "urgency"
	SortName     LotSort = "name"
	SortQuantity LotSort = "quantity"
	SortDaysLeft LotSort = "days_left"
	SortReceived LotSort = "received"
)

// ParseLotSort maps a query value onto a LotSort, defaulting to urgency.
func ParseLotSort(value string) (LotSort, error) {
	switch LotSort(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortUrgency:
		return SortUrgency, nil
	case SortName:
		return SortName, nil
	case SortQuantity:
		return SortQuantity, nil
	case SortDaysLeft, "expiry", "expiry_days":
		return SortDaysLeft, nil
	case SortReceived:
		return SortReceived, nil
	default:
		return "", newValidationError("sort", "unsupported value %q", value)
	}
}

// LotFilter narrows lot listings. Fully consumed lots are skipped unless
// IncludeConsumed is set.
type LotFilter struct {
	OrderID         uint
	IngredientID    uint
	Category        string
	Search          string
	Statuses        []Status
	IncludeConsumed bool
	Sort            LotSort
	Descending      bool
}

// IsUnfiltered reports whether the filter selects every active lot.
func (f LotFilter) IsUnfiltered() bool {
	category := normalizeSearch(f.Category)
	return f.OrderID == 0 &&
		f.IngredientID == 0 &&
		(category == "" || category == "all") &&
		normalizeSearch(f.Search) == "" &&
		len(f.Statuses) == 0 &&
		!f.IncludeConsumed
}

// LotView is a stock lot joined with its ingredient, order and derived expiry status.
type LotView struct {
	OrderID         uint
	IngredientID    uint
	IngredientName  string
	Category        string
	Unit            string
	Location        string
	SupplierName    string
	DateReceived    time.Time
	InitialQuantity decimal.Decimal
	CurrentQuantity decimal.Decimal
	Window          *Window
	Expiry          ExpiryResult
	// Problem is set when the stored spoilage window is invalid; Expiry is then Unknown.
	Problem string
}

// Active reports whether the lot still has stock on hand.
func (v LotView) Active() bool {
	return v.CurrentQuantity.IsPositive()
}

type lotRow struct {
	OrderID         uint
	IngredientID    uint
	IngredientName  string
	Category        string
	Unit            string
	Location        string
	SupplierName    string
	DateReceived    time.Time
	InitialQuantity decimal.Decimal
	CurrentQuantity decimal.Decimal
	MinDays         *int
	MaxDays         *int
}

// ListLots returns lots enriched with days-left and status as seen on today.
func (s *Store) ListLots(ctx context.Context, today time.Time, filter LotFilter) ([]LotView, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Table("stock_lots AS s").
		Select(`s.order_id, s.ingredient_id, i.name AS ingredient_name, i.category, s.unit, s.location,
			o.supplier_name, o.date_received, s.initial_quantity, s.current_quantity,
			w.min_days, w.max_days`).
		Joins("JOIN ingredients i ON i.id = s.ingredient_id AND i.deleted_at IS NULL").
		Joins("JOIN orders o ON o.id = s.order_id AND o.deleted_at IS NULL").
		Joins("LEFT JOIN spoilage_windows w ON w.order_id = s.order_id AND w.ingredient_id = s.ingredient_id")

	if !filter.IncludeConsumed {
		query = query.Where("s.current_quantity > 0")
	}
	if filter.OrderID != 0 {
		query = query.Where("s.order_id = ?", filter.OrderID)
	}
	if filter.IngredientID != 0 {
		query = query.Where("s.ingredient_id = ?", filter.IngredientID)
	}
	if category := normalizeSearch(filter.Category); category != "" && category != "all" {
		query = query.Where("lower(i.category) = ?", category)
	}
	if search := normalizeSearch(filter.Search); search != "" {
		query = query.Where(`lower(i.name) LIKE ? ESCAPE '\'`, likePattern(search))
	}

	var rows []lotRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stock lots: %w", err)
	}

	views := make([]LotView, 0, len(rows))
	for _, row := range rows {
		view := projectLot(ctx, today, row)
		if !matchesStatus(view.Expiry.Status, filter.Statuses) {
			continue
		}
		views = append(views, view)
	}

	sortLots(views, filter.Sort, filter.Descending)
	return views, nil
}

// FindLot returns one lot, consumed or not.
func (s *Store) FindLot(ctx context.Context, today time.Time, orderID, ingredientID uint) (LotView, error) {
	views, err := s.ListLots(ctx, today, LotFilter{
		OrderID:         orderID,
		IngredientID:    ingredientID,
		IncludeConsumed: true,
	})
	if err != nil {
		return LotView{}, err
	}
	if len(views) == 0 {
		return LotView{}, ErrLotNotFound
	}
	return views[0], nil
}

func projectLot(ctx context.Context, today time.Time, row lotRow) LotView {
	view := LotView{
		OrderID:         row.OrderID,
		IngredientID:    row.IngredientID,
		IngredientName:  row.IngredientName,
		Category:        row.Category,
		Unit:            row.Unit,
		Location:        row.Location,
		SupplierName:    row.SupplierName,
		DateReceived:    CalendarDate(row.DateReceived),
		InitialQuantity: row.InitialQuantity.Round(quantityScale),
		CurrentQuantity: row.CurrentQuantity.Round(quantityScale),
	}
	if row.MinDays != nil && row.MaxDays != nil {
		view.Window = &Window{MinDays: *row.MinDays, MaxDays: *row.MaxDays}
	}

	result, err := ComputeExpiryStatus(today, view.DateReceived, view.Window)
	if err != nil {
		applog.Error(ctx, "stored spoilage window is invalid",
			"orderID", row.OrderID,
			"ingredientID", row.IngredientID,
			"error", err,
		)
		view.Problem = err.Error()
		result = ExpiryResult{Status: StatusUnknown}
	}
	view.Expiry = result
	return view
}

func matchesStatus(status Status, allowed []Status) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == status {
			return true
		}
	}
	return false
}

func sortLots(views []LotView, by LotSort, descending bool) {
	less := lotLess(by)
	sort.SliceStable(views, func(i, j int) bool {
		if descending {
			return less(views[j], views[i])
		}
		return less(views[i], views[j])
	})
}

func lotLess(by LotSort) func(a, b LotView) bool {
	byName := func(a, b LotView) bool {
		an, bn := strings.ToLower(a.IngredientName), strings.ToLower(b.IngredientName)
		if an != bn {
			return an < bn
		}
		return a.OrderID < b.OrderID
	}

	switch by {
	case SortName:
		return byName
	case SortQuantity:
		return func(a, b LotView) bool {
			if cmp := a.CurrentQuantity.Cmp(b.CurrentQuantity); cmp != 0 {
				return cmp < 0
			}
			return byName(a, b)
		}
	case SortReceived:
		return func(a, b LotView) bool {
			if !a.DateReceived.Equal(b.DateReceived) {
				return a.DateReceived.Before(b.DateReceived)
			}
			return byName(a, b)
		}
	case SortDaysLeft:
		return func(a, b LotView) bool {
			if a.Expiry.Known() != b.Expiry.Known() {
				return a.Expiry.Known()
			}
			if a.Expiry.DaysLeft != b.Expiry.DaysLeft {
				return a.Expiry.DaysLeft < b.Expiry.DaysLeft
			}
			return byName(a, b)
		}
	default:
		return func(a, b LotView) bool {
			ua, ub := a.Expiry.Status.Urgency(), b.Expiry.Status.Urgency()
			if ua != ub {
				return ua < ub
			}
			if a.Expiry.DaysLeft != b.Expiry.DaysLeft {
				return a.Expiry.DaysLeft < b.Expiry.DaysLeft
			}
			return byName(a, b)
		}
	}
}
