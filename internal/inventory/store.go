package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "carinderia/internal/log"
	"carinderia/models"
)

// quantityScale matches the decimal(12,3) columns backing stock quantities.
const quantityScale = 3

// Recorder receives consumption outcomes. The metrics registry implements it.
type Recorder interface {
	ConsumptionApplied(quantity float64)
	ConsumptionRejected(reason string)
}

type noopRecorder struct{}

func (noopRecorder) ConsumptionApplied(float64)  {}
func (noopRecorder) ConsumptionRejected(string) {}

// Store persists ingredients, orders and stock lots and is the only writer of stock quantities.
type Store struct {
	db       *gorm.DB
	recorder Recorder
}

// Option configures a Store.
type Option func(*Store)

// WithRecorder installs a Recorder for consumption outcomes.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewStore wraps a gorm handle.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, recorder: noopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db.WithContext(ctx), nil
}

// ConsumeInput identifies the lot to draw from and how much to use.
type ConsumeInput struct {
	OrderID      uint
	IngredientID uint
	QuantityUsed decimal.Decimal
	UsedBy       *uint
	RequestID    string
}

// ConsumeResult describes a successful consumption.
type ConsumeResult struct {
	OrderID           uint
	IngredientID      uint
	IngredientName    string
	QuantityUsed      decimal.Decimal
	RemainingQuantity decimal.Decimal
	FullyConsumed     bool
}

// Consume applies a consumption to one stock lot. The decrement is issued first as a
// single conditional UPDATE guarded by current_quantity >= quantity_used, so two
// concurrent requests cannot both spend the same stock and no read lock has to be
// upgraded to a write lock. Only when no row changed is the lot read, to tell a
// missing lot from an insufficient one. Failures are returned, never retried.
func (s *Store) Consume(ctx context.Context, in ConsumeInput) (ConsumeResult, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return ConsumeResult{}, err
	}
	if in.OrderID == 0 {
		return ConsumeResult{}, newValidationError("order_id", "is required")
	}
	if in.IngredientID == 0 {
		return ConsumeResult{}, newValidationError("ingredient_id", "is required")
	}
	if err := validateQuantityUsed(in.QuantityUsed); err != nil {
		s.recorder.ConsumptionRejected("validation")
		return ConsumeResult{}, err
	}

	var result ConsumeResult
	err = db.Transaction(func(tx *gorm.DB) error {
		applied, err := decrementIfAvailable(tx, in.OrderID, in.IngredientID, in.QuantityUsed)
		if err != nil {
			return err
		}
		if !applied {
			return rejectedConsumption(tx, in)
		}

		updated, err := findStockLot(tx, in.OrderID, in.IngredientID)
		if err != nil {
			return err
		}

		record := models.ConsumptionRecord{
			OrderID:           in.OrderID,
			IngredientID:      in.IngredientID,
			QuantityUsed:      in.QuantityUsed,
			RemainingQuantity: updated.CurrentQuantity,
			UsedBy:            in.UsedBy,
			RequestID:         in.RequestID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record consumption: %w", err)
		}

		var ingredient models.Ingredient
		if err := tx.Select("id", "name").First(&ingredient, in.IngredientID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load ingredient: %w", err)
		}

		result = ConsumeResult{
			OrderID:           in.OrderID,
			IngredientID:      in.IngredientID,
			IngredientName:    ingredient.Name,
			QuantityUsed:      in.QuantityUsed,
			RemainingQuantity: updated.CurrentQuantity,
			FullyConsumed:     updated.CurrentQuantity.IsZero(),
		}
		return nil
	})
	if err != nil {
		s.recordRejection(err)
		return ConsumeResult{}, err
	}

	s.recorder.ConsumptionApplied(in.QuantityUsed.InexactFloat64())
	applog.Debug(ctx, "stock consumed",
		"orderID", in.OrderID,
		"ingredientID", in.IngredientID,
		"quantityUsed", in.QuantityUsed.String(),
		"remaining", result.RemainingQuantity.String(),
	)
	return result, nil
}

// decrementIfAvailable performs the guarded decrement and reports whether a row changed.
func decrementIfAvailable(tx *gorm.DB, orderID, ingredientID uint, quantity decimal.Decimal) (bool, error) {
	res := tx.Model(&models.StockLot{}).
		Where("order_id = ? AND ingredient_id = ? AND current_quantity >= ?", orderID, ingredientID, quantity).
		Update("current_quantity", gorm.Expr("ROUND(current_quantity - ?, ?)", quantity, quantityScale))
	if res.Error != nil {
		return false, fmt.Errorf("decrement stock lot: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// rejectedConsumption explains why the guarded decrement changed no row: the lot is
// missing, or it holds less than requested as of this read.
func rejectedConsumption(tx *gorm.DB, in ConsumeInput) error {
	lot, err := findStockLot(tx, in.OrderID, in.IngredientID)
	if err != nil {
		return err
	}
	if _, err := ApplyConsumption(lot.CurrentQuantity, in.QuantityUsed); err != nil {
		return withLotKey(err, in.OrderID, in.IngredientID)
	}
	// the lot was refilled after the update ran; the request still lost
	return &InsufficientStockError{
		OrderID:      in.OrderID,
		IngredientID: in.IngredientID,
		Available:    lot.CurrentQuantity,
		Requested:    in.QuantityUsed,
	}
}

func (s *Store) recordRejection(err error) {
	var insufficient *InsufficientStockError
	var invalid *ValidationError
	switch {
	case errors.As(err, &insufficient):
		s.recorder.ConsumptionRejected("insufficient_stock")
	case errors.As(err, &invalid):
		s.recorder.ConsumptionRejected("validation")
	case errors.Is(err, ErrLotNotFound):
		s.recorder.ConsumptionRejected("not_found")
	default:
		s.recorder.ConsumptionRejected("error")
	}
}

func withLotKey(err error, orderID, ingredientID uint) error {
	var insufficient *InsufficientStockError
	if errors.As(err, &insufficient) {
		insufficient.OrderID = orderID
		insufficient.IngredientID = ingredientID
	}
	return err
}

func findStockLot(tx *gorm.DB, orderID, ingredientID uint) (models.StockLot, error) {
	var lot models.StockLot
	err := tx.Where("order_id = ? AND ingredient_id = ?", orderID, ingredientID).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StockLot{}, ErrLotNotFound
		}
		return models.StockLot{}, fmt.Errorf("load stock lot: %w", err)
	}
	lot.InitialQuantity = lot.InitialQuantity.Round(quantityScale)
	lot.CurrentQuantity = lot.CurrentQuantity.Round(quantityScale)
	return lot, nil
}

// ConsumptionHistory returns the consumption log for one lot, newest first.
func (s *Store) ConsumptionHistory(ctx context.Context, orderID, ingredientID uint) ([]models.ConsumptionRecord, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := findStockLot(db, orderID, ingredientID); err != nil {
		return nil, err
	}

	var records []models.ConsumptionRecord
	if err := db.Where("order_id = ? AND ingredient_id = ?", orderID, ingredientID).
		Order("created_at desc, id desc").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list consumption records: %w", err)
	}
	for i := range records {
		records[i].QuantityUsed = records[i].QuantityUsed.Round(quantityScale)
		records[i].RemainingQuantity = records[i].RemainingQuantity.Round(quantityScale)
	}
	return records, nil
}

func normalizeSearch(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func likePattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
	return "%" + escaped + "%"
}
