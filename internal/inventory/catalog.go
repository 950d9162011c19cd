package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"carinderia/models"
)

// DefaultCategories are the ingredient categories offered by the dashboard tabs.
var DefaultCategories = []string{"Produce", "Dairy", "Spice", "Sweetener", "Meat", "Grain", "Sauce"}

// IngredientInput carries the fields accepted when creating an ingredient.
type IngredientInput struct {
	Name     string
	Category string
	Unit     string
}

// IngredientFilter narrows ingredient listings.
type IngredientFilter struct {
	Search   string
	Category string
}

func (in IngredientInput) normalize() (IngredientInput, error) {
	out := IngredientInput{
		Name:     strings.Join(strings.Fields(in.Name), " "),
		Category: canonicalCategory(in.Category),
		Unit:     strings.TrimSpace(in.Unit),
	}
	if out.Name == "" {
		return IngredientInput{}, newValidationError("name", "is required")
	}
	if out.Unit == "" {
		return IngredientInput{}, newValidationError("unit", "is required")
	}
	return out, nil
}

// canonicalCategory matches known categories case-insensitively and keeps free text otherwise.
func canonicalCategory(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, category := range DefaultCategories {
		if strings.EqualFold(trimmed, category) {
			return category
		}
	}
	return trimmed
}

// CreateIngredient adds a catalog entry. Names are unique regardless of case.
func (s *Store) CreateIngredient(ctx context.Context, in IngredientInput) (models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Ingredient{}, err
	}
	in, err = in.normalize()
	if err != nil {
		return models.Ingredient{}, err
	}

	var ingredient models.Ingredient
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("lower(name) = ?", strings.ToLower(in.Name)).Count(&count).Error; err != nil {
			return fmt.Errorf("check ingredient name: %w", err)
		}
		if count > 0 {
			return ErrDuplicateIngredient
		}

		ingredient = models.Ingredient{Name: in.Name, Category: in.Category, Unit: in.Unit}
		if err := tx.Create(&ingredient).Error; err != nil {
			return fmt.Errorf("create ingredient: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Ingredient{}, err
	}
	return ingredient, nil
}

// EnsureIngredient returns the ingredient with the given name, creating it when no
// row matches regardless of case. Existing rows are never modified. It reports whether
// a new row was created. Used by bulk imports.
func (s *Store) EnsureIngredient(ctx context.Context, in IngredientInput) (models.Ingredient, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Ingredient{}, false, err
	}
	in, err = in.normalize()
	if err != nil {
		return models.Ingredient{}, false, err
	}

	var (
		ingredient models.Ingredient
		created    bool
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("lower(name) = ?", strings.ToLower(in.Name)).First(&ingredient).Error
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("find ingredient %q: %w", in.Name, err)
		}

		ingredient = models.Ingredient{Name: in.Name, Category: in.Category, Unit: in.Unit}
		if err := tx.Create(&ingredient).Error; err != nil {
			return fmt.Errorf("create ingredient %q: %w", in.Name, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return models.Ingredient{}, false, err
	}
	return ingredient, created, nil
}

// FindIngredient loads one ingredient by identifier.
func (s *Store) FindIngredient(ctx context.Context, id uint) (models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Ingredient{}, err
	}
	var ingredient models.Ingredient
	if err := db.First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ingredient{}, ErrIngredientNotFound
		}
		return models.Ingredient{}, fmt.Errorf("load ingredient: %w", err)
	}
	return ingredient, nil
}

// ListIngredients returns catalog entries ordered by name.
func (s *Store) ListIngredients(ctx context.Context, filter IngredientFilter) ([]models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&models.Ingredient{}).Order("name asc")
	if search := normalizeSearch(filter.Search); search != "" {
		query = query.Where(`lower(name) LIKE ? ESCAPE '\'`, likePattern(search))
	}
	if category := normalizeSearch(filter.Category); category != "" && category != "all" {
		query = query.Where("lower(category) = ?", category)
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

// SearchSuppliers returns distinct supplier names containing the search text.
func (s *Store) SearchSuppliers(ctx context.Context, search string, limit int) ([]string, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := db.Model(&models.Order{}).Distinct("supplier_name").Order("supplier_name asc").Limit(limit)
	if term := normalizeSearch(search); term != "" {
		query = query.Where(`lower(supplier_name) LIKE ? ESCAPE '\'`, likePattern(term))
	}

	var names []string
	if err := query.Pluck("supplier_name", &names).Error; err != nil {
		return nil, fmt.Errorf("search suppliers: %w", err)
	}
	return names, nil
}
