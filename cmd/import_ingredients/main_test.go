package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carinderia/internal/db"
	"carinderia/models"
)

func withTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file:import-"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database))

	original := openDatabase
	openDatabase = func() (*gorm.DB, error) { return database, nil }
	t.Cleanup(func() { openDatabase = original })
	return database
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseCSVMapsHeaderColumns(t *testing.T) {
	records, err := parseCSV(strings.NewReader("Unit,Name,Category\nkg, Tomato ,produce\n,,\npc,Egg,\n"))
	require.NoError(t, err)
	assert.Equal(t, []catalogRecord{
		{Name: "Tomato", Category: "produce", Unit: "kg"},
		{Name: "Egg", Unit: "pc"},
	}, records)
}

func TestParseCSVRequiresNameAndUnit(t *testing.T) {
	_, err := parseCSV(strings.NewReader("Name,Category\nTomato,Produce\n"))
	assert.ErrorContains(t, err, `"unit"`)

	_, err = parseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseYAMLList(t *testing.T) {
	records, err := parseYAML([]byte("- name: Fish Sauce\n  category: Sauce\n  unit: L\n- name: Calamansi\n  unit: kg\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, catalogRecord{Name: "Fish Sauce", Category: "Sauce", Unit: "L"}, records[0])
	assert.Equal(t, "Calamansi", records[1].Name)
}

func TestParseTextLinesSkipsNoise(t *testing.T) {
	text := "Weekly catalog\nName, Category, Unit\nGarlic, Spice, kg\nPage 1\nCoconut Milk, Dairy, L\n, Sauce, L\n"
	assert.Equal(t, []catalogRecord{
		{Name: "Garlic", Category: "Spice", Unit: "kg"},
		{Name: "Coconut Milk", Category: "Dairy", Unit: "L"},
	}, parseTextLines(text))
}

func TestParseCatalogRejectsUnknownFormat(t *testing.T) {
	_, err := parseCatalog("xlsx", nil)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestImportCreatesMissingIngredients(t *testing.T) {
	database := withTestDatabase(t)
	require.NoError(t, database.Create(&models.Ingredient{Name: "Tomato", Category: "Produce", Unit: "pc"}).Error)

	path := writeFile(t, "catalog.csv", "Name,Category,Unit\ntomato,Produce,kg\nPatis,sauce,L\n")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Imported 2 ingredients from catalog.csv (1 new, 1 already cataloged)")

	var ingredients []models.Ingredient
	require.NoError(t, database.Order("name asc").Find(&ingredients).Error)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Patis", ingredients[0].Name)
	assert.Equal(t, "Sauce", ingredients[0].Category)
	assert.Equal(t, "Tomato", ingredients[1].Name)
	assert.Equal(t, "pc", ingredients[1].Unit)
}

func TestImportDryRunDoesNotOpenDatabase(t *testing.T) {
	original := openDatabase
	openDatabase = func() (*gorm.DB, error) {
		t.Fatal("dry run must not open the database")
		return nil, nil
	}
	t.Cleanup(func() { openDatabase = original })

	path := writeFile(t, "catalog.txt", "- name: Kangkong\n  category: Produce\n  unit: bundle\n")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--dry-run", "--format", "yaml", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Kangkong\tProduce\tbundle")
	assert.Contains(t, out.String(), "Parsed 1 ingredients")
}

func TestImportStopsOnInvalidRecord(t *testing.T) {
	withTestDatabase(t)
	path := writeFile(t, "catalog.csv", "Name,Category,Unit\nRice,Grain,\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "record 1 (Rice)")
}
