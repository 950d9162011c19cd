package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"carinderia/internal/config"
	"carinderia/internal/db"
	"carinderia/internal/inventory"
	applog "carinderia/internal/log"
)

// catalogRecord is one ingredient row read from an import file.
type catalogRecord struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Unit     string `yaml:"unit"`
}

var openDatabase = func() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return database, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dryRun bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "import-ingredients <file>",
		Short: "Load ingredient catalog entries from a csv, yaml or pdf file",
		Long: "Reads Name, Category and Unit for each ingredient and creates it unless an\n" +
			"ingredient with the same name is already cataloged.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args[0], format, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the parsed records without writing them")
	cmd.Flags().StringVar(&format, "format", "", "input format (csv, yaml, pdf); defaults to the file extension")
	return cmd
}

func run(ctx context.Context, out io.Writer, path, format string, dryRun bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("file path must not be empty")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	records, err := parseCatalog(strings.ToLower(format), content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	applog.Debug(ctx, "catalog parsed", "file", path, "records", len(records))

	if dryRun {
		for _, record := range records {
			fmt.Fprintf(out, "%s\t%s\t%s\n", record.Name, record.Category, record.Unit)
		}
		fmt.Fprintf(out, "Parsed %d ingredients from %s (dry run)\n", len(records), filepath.Base(path))
		return nil
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	store := inventory.NewStore(database)

	created, existing := 0, 0
	for idx, record := range records {
		_, isNew, err := store.EnsureIngredient(ctx, inventory.IngredientInput{
			Name:     record.Name,
			Category: record.Category,
			Unit:     record.Unit,
		})
		if err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record.Name, err)
		}
		if isNew {
			created++
		} else {
			existing++
		}
	}

	applog.Info(ctx, "catalog imported", "file", path, "created", created, "existing", existing)
	fmt.Fprintf(out, "Imported %d ingredients from %s (%d new, %d already cataloged)\n", created+existing, filepath.Base(path), created, existing)
	return nil
}

func parseCatalog(format string, content []byte) ([]catalogRecord, error) {
	switch format {
	case "csv":
		return parseCSV(bytes.NewReader(content))
	case "yaml", "yml":
		return parseYAML(content)
	case "pdf":
		return parsePDF(content)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func parseCSV(r io.Reader) ([]catalogRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	columns := map[string]int{}
	for idx, key := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(key))] = idx
	}
	for _, required := range []string{"name", "unit"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv header is missing %q", required)
		}
	}

	field := func(row []string, key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]catalogRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := catalogRecord{
			Name:     field(row, "name"),
			Category: field(row, "category"),
			Unit:     field(row, "unit"),
		}
		if record.Name == "" && record.Unit == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func parseYAML(content []byte) ([]catalogRecord, error) {
	var records []catalogRecord
	if err := yaml.Unmarshal(content, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func parsePDF(content []byte) ([]catalogRecord, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		plain, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		text.WriteString(plain)
		text.WriteString("\n")
	}
	return parseTextLines(text.String()), nil
}

// parseTextLines reads "Name, Category, Unit" lines. Header lines, page furniture
// and anything without exactly three fields are skipped.
func parseTextLines(text string) []catalogRecord {
	var records []catalogRecord
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			continue
		}
		record := catalogRecord{
			Name:     strings.TrimSpace(parts[0]),
			Category: strings.TrimSpace(parts[1]),
			Unit:     strings.TrimSpace(parts[2]),
		}
		if record.Name == "" || record.Unit == "" || strings.EqualFold(record.Name, "name") {
			continue
		}
		records = append(records, record)
	}
	return records
}
