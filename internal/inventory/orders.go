package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"carinderia/models"
)

// OrderInput describes a supplier delivery and the lots it carries.
type OrderInput struct {
	SupplierName string
	DateReceived time.Time
	Items        []ItemInput
}

// ItemInput describes one received ingredient. Both spoilage bounds must be set
// together; leaving both nil records a lot without a spoilage window.
type ItemInput struct {
	IngredientID    uint
	Quantity        decimal.Decimal
	Unit            string
	Location        string
	SpoilageMinDays *int
	SpoilageMaxDays *int
}

func (in ItemInput) window() (*Window, error) {
	switch {
	case in.SpoilageMinDays == nil && in.SpoilageMaxDays == nil:
		return nil, nil
	case in.SpoilageMinDays == nil:
		return nil, newValidationError("spoilage_min_days", "is required when spoilage_max_days is set")
	case in.SpoilageMaxDays == nil:
		return nil, newValidationError("spoilage_max_days", "is required when spoilage_min_days is set")
	}
	w := Window{MinDays: *in.SpoilageMinDays, MaxDays: *in.SpoilageMaxDays}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

func (in ItemInput) validate() (*Window, error) {
	if in.IngredientID == 0 {
		return nil, newValidationError("ingredient_id", "is required")
	}
	if err := validateQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	return in.window()
}

// ReceiveOrder records a delivery together with its stock lots and spoilage windows
// in one transaction.
func (s *Store) ReceiveOrder(ctx context.Context, in OrderInput) (models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Order{}, err
	}

	supplier := strings.Join(strings.Fields(in.SupplierName), " ")
	if supplier == "" {
		return models.Order{}, newValidationError("supplier_name", "is required")
	}
	if in.DateReceived.IsZero() {
		return models.Order{}, newValidationError("date_received", "is required")
	}

	seen := make(map[uint]struct{}, len(in.Items))
	for _, item := range in.Items {
		if _, err := item.validate(); err != nil {
			return models.Order{}, err
		}
		if _, dup := seen[item.IngredientID]; dup {
			return models.Order{}, fmt.Errorf("ingredient %d listed twice: %w", item.IngredientID, ErrDuplicateLot)
		}
		seen[item.IngredientID] = struct{}{}
	}

	order := models.Order{
		SupplierName: supplier,
		DateReceived: CalendarDate(in.DateReceived),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, item := range in.Items {
			if err := insertItem(tx, order.ID, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// AddOrderItem records one more stock lot on an existing order.
func (s *Store) AddOrderItem(ctx context.Context, orderID uint, item ItemInput) (models.StockLot, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.StockLot{}, err
	}
	if _, err := item.validate(); err != nil {
		return models.StockLot{}, err
	}

	var lot models.StockLot
	err = db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load order: %w", err)
		}
		if err := insertItem(tx, orderID, item); err != nil {
			return err
		}
		var err error
		lot, err = findStockLot(tx, orderID, item.IngredientID)
		return err
	})
	if err != nil {
		return models.StockLot{}, err
	}
	return lot, nil
}

func insertItem(tx *gorm.DB, orderID uint, item ItemInput) error {
	window, err := item.validate()
	if err != nil {
		return err
	}

	var ingredient models.Ingredient
	if err := tx.First(&ingredient, item.IngredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("ingredient %d: %w", item.IngredientID, ErrIngredientNotFound)
		}
		return fmt.Errorf("load ingredient: %w", err)
	}

	var existing int64
	if err := tx.Model(&models.StockLot{}).
		Where("order_id = ? AND ingredient_id = ?", orderID, item.IngredientID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("check stock lot: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("ingredient %d: %w", item.IngredientID, ErrDuplicateLot)
	}

	unit := strings.TrimSpace(item.Unit)
	if unit == "" {
		unit = ingredient.Unit
	}
	quantity := item.Quantity.Round(quantityScale)

	lot := models.StockLot{
		OrderID:         orderID,
		IngredientID:    item.IngredientID,
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
		Unit:            unit,
		Location:        strings.TrimSpace(item.Location),
	}
	if err := tx.Create(&lot).Error; err != nil {
		return fmt.Errorf("create stock lot: %w", err)
	}

	if window == nil {
		return nil
	}
	spoilage := models.SpoilageWindow{
		OrderID:      orderID,
		IngredientID: item.IngredientID,
		MinDays:      window.MinDays,
		MaxDays:      window.MaxDays,
	}
	if err := tx.Create(&spoilage).Error; err != nil {
		return fmt.Errorf("create spoilage window: %w", err)
	}
	return nil
}

// FindOrder loads one order by identifier.
func (s *Store) FindOrder(ctx context.Context, id uint) (models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Order{}, err
	}
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

// ListOrders returns orders, most recently received first.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := db.Order("date_received desc, id desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// OrderItems returns every lot on the order, consumed ones included.
func (s *Store) OrderItems(ctx context.Context, orderID uint, today time.Time) ([]LotView, error) {
	if _, err := s.FindOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.ListLots(ctx, today, LotFilter{OrderID: orderID, IncludeConsumed: true, Sort: SortName})
}
