package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"carinderia/internal/inventory"
	applog "carinderia/internal/log"
)

const (
	dateLayout      = "2006-01-02"
	maxRequestBytes = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type validationErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

type insufficientStockResponse struct {
	Error        string `json:"error"`
	OrderID      uint   `json:"order_id"`
	IngredientID uint   `json:"ingredient_id"`
	Available    string `json:"available"`
	Requested    string `json:"requested"`
}

// writeStoreError maps inventory errors onto HTTP responses. Client errors are logged
// at debug level, everything else at error level.
func writeStoreError(w http.ResponseWriter, r *http.Request, action string, err error) {
	ctx := r.Context()

	var invalid *inventory.ValidationError
	var insufficient *inventory.InsufficientStockError
	switch {
	case errors.As(err, &invalid):
		applog.Debug(ctx, action+" rejected", "field", invalid.Field, "reason", invalid.Reason)
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{Error: invalid.Error(), Field: invalid.Field})
	case errors.As(err, &insufficient):
		applog.Debug(ctx, action+" rejected", "error", err)
		writeJSON(w, http.StatusConflict, insufficientStockResponse{
			Error:        "insufficient stock",
			OrderID:      insufficient.OrderID,
			IngredientID: insufficient.IngredientID,
			Available:    insufficient.Available.String(),
			Requested:    insufficient.Requested.String(),
		})
	case errors.Is(err, inventory.ErrLotNotFound),
		errors.Is(err, inventory.ErrOrderNotFound),
		errors.Is(err, inventory.ErrIngredientNotFound):
		applog.Debug(ctx, action+" target missing", "error", err)
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrDuplicateIngredient),
		errors.Is(err, inventory.ErrDuplicateLot):
		applog.Debug(ctx, action+" conflicts with existing record", "error", err)
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrInvalidDB):
		applog.Error(ctx, action+" without database", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		applog.Error(ctx, "failed to "+action, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to "+action)
	}
}

// decodeJSON reads a single JSON object from the request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// pathSegments splits the request path below prefix into its non-empty parts.
func pathSegments(r *http.Request, prefix string) []string {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid identifier %q", value)
	}
	return uint(id), nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &inventory.ValidationError{Field: "date_received", Reason: fmt.Sprintf("must use YYYY-MM-DD, got %q", value)}
	}
	return parsed, nil
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(dateLayout)
}

func requireStore(w http.ResponseWriter, r *http.Request) bool {
	if database == nil {
		applog.Debug(r.Context(), "inventory request without database", "path", r.URL.Path)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	return true
}
