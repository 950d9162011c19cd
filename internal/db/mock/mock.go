package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carinderia/internal/db"
	"carinderia/internal/inventory"
	applog "carinderia/internal/log"
	"carinderia/models"
)

// Password is the login password of the seeded staff account.
const Password = "sinigang"

// Email is the login email of the seeded staff account.
const Email = "tita.nena@carinderia.local"

// New returns an in-memory sqlite database seeded with a week of kitchen deliveries.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:carinderia-mock-"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database, time.Now()); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

type seedIngredient struct {
	name     string
	category string
	unit     string
}

type seedItem struct {
	ingredient string
	quantity   string
	location   string
	minDays    int
	maxDays    int
	noWindow   bool
}

type seedOrder struct {
	supplier string
	daysAgo  int
	items    []seedItem
}

var seedIngredients = []seedIngredient{
	{"Tomato", "Produce", "kg"},
	{"Kangkong", "Produce", "bundle"},
	{"Garlic", "Spice", "kg"},
	{"Black Pepper", "Spice", "kg"},
	{"Evaporated Milk", "Dairy", "can"},
	{"Brown Sugar", "Sweetener", "kg"},
	{"Pork Belly", "Meat", "kg"},
	{"Chicken Thigh", "Meat", "kg"},
	{"Jasmine Rice", "Grain", "kg"},
	{"Soy Sauce", "Sauce", "L"},
	{"Cane Vinegar", "Sauce", "L"},
}

var seedOrders = []seedOrder{
	{
		supplier: "Balintawak Market",
		daysAgo:  6,
		items: []seedItem{
			{ingredient: "Tomato", quantity: "8", location: "Chiller", minDays: 3, maxDays: 7},
			{ingredient: "Kangkong", quantity: "12", location: "Chiller", minDays: 2, maxDays: 4},
			{ingredient: "Garlic", quantity: "3.5", location: "Dry storage", minDays: 60, maxDays: 120},
		},
	},
	{
		supplier: "Mega Q Mart Meats",
		daysAgo:  2,
		items: []seedItem{
			{ingredient: "Pork Belly", quantity: "10", location: "Freezer", minDays: 2, maxDays: 3},
			{ingredient: "Chicken Thigh", quantity: "7.25", location: "Freezer", minDays: 1, maxDays: 2},
		},
	},
	{
		supplier: "San Miguel Dry Goods",
		daysAgo:  1,
		items: []seedItem{
			{ingredient: "Jasmine Rice", quantity: "50", location: "Dry storage", noWindow: true},
			{ingredient: "Soy Sauce", quantity: "6", location: "Pantry", minDays: 180, maxDays: 365},
			{ingredient: "Cane Vinegar", quantity: "4", location: "Pantry", minDays: 300, maxDays: 730},
			{ingredient: "Brown Sugar", quantity: "5", location: "Pantry", minDays: 20, maxDays: 25},
			{ingredient: "Evaporated Milk", quantity: "24", location: "Pantry", minDays: 150, maxDays: 180},
		},
	},
}

func seed(ctx context.Context, database *gorm.DB, now time.Time) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Tita Nena",
		Email:        Email,
		PasswordHash: string(password),
	}
	if err := database.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	store := inventory.NewStore(database)

	ids := make(map[string]uint, len(seedIngredients))
	for _, ing := range seedIngredients {
		created, err := store.CreateIngredient(ctx, inventory.IngredientInput{
			Name:     ing.name,
			Category: ing.category,
			Unit:     ing.unit,
		})
		if err != nil {
			return fmt.Errorf("seed ingredient %q: %w", ing.name, err)
		}
		ids[ing.name] = created.ID
	}

	today := inventory.CalendarDate(now)
	var market models.Order
	for i, order := range seedOrders {
		input := inventory.OrderInput{
			SupplierName: order.supplier,
			DateReceived: today.AddDate(0, 0, -order.daysAgo),
		}
		for _, item := range order.items {
			in := inventory.ItemInput{
				IngredientID: ids[item.ingredient],
				Quantity:     decimal.RequireFromString(item.quantity),
				Location:     item.location,
			}
			if !item.noWindow {
				minDays, maxDays := item.minDays, item.maxDays
				in.SpoilageMinDays = &minDays
				in.SpoilageMaxDays = &maxDays
			}
			input.Items = append(input.Items, in)
		}
		received, err := store.ReceiveOrder(ctx, input)
		if err != nil {
			return fmt.Errorf("seed order from %q: %w", order.supplier, err)
		}
		if i == 0 {
			market = received
		}
	}

	if _, err := store.Consume(ctx, inventory.ConsumeInput{
		OrderID:      market.ID,
		IngredientID: ids["Tomato"],
		QuantityUsed: decimal.RequireFromString("2.5"),
		UsedBy:       &user.ID,
	}); err != nil {
		return fmt.Errorf("seed consumption: %w", err)
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
