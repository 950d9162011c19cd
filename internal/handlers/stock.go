package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"carinderia/internal/inventory"
	applog "carinderia/internal/log"
)

type lotResponse struct {
	OrderID         uint    `json:"order_id"`
	IngredientID    uint    `json:"ingredient_id"`
	IngredientName  string  `json:"ingredient_name"`
	Category        string  `json:"category"`
	Unit            string  `json:"unit"`
	Location        string  `json:"location"`
	SupplierName    string  `json:"supplier_name"`
	DateReceived    string  `json:"date_received"`
	InitialQuantity string  `json:"initial_quantity"`
	CurrentQuantity string  `json:"current_quantity"`
	SpoilageMinDays *int    `json:"spoilage_min_days"`
	SpoilageMaxDays *int    `json:"spoilage_max_days"`
	Status          string  `json:"status"`
	DaysLeft        *int    `json:"days_left"`
	ExpiryDate      *string `json:"expiry_date"`
	Label           string  `json:"label"`
	Problem         string  `json:"problem,omitempty"`
}

type consumeRequest struct {
	OrderID      uint            `json:"order_id"`
	IngredientID uint            `json:"ingredient_id"`
	QuantityUsed decimal.Decimal `json:"quantity_used"`
}

type consumeResponse struct {
	OrderID           uint   `json:"order_id"`
	IngredientID      uint   `json:"ingredient_id"`
	IngredientName    string `json:"ingredient_name"`
	QuantityUsed      string `json:"quantity_used"`
	RemainingQuantity string `json:"remaining_quantity"`
	FullyConsumed     bool   `json:"fully_consumed"`
}

type consumptionResponse struct {
	ID                uint      `json:"id"`
	QuantityUsed      string    `json:"quantity_used"`
	RemainingQuantity string    `json:"remaining_quantity"`
	UsedBy            *uint     `json:"used_by,omitempty"`
	RequestID         string    `json:"request_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// StockResource serves stock lots under /app/api/stock:
//
//	GET  /app/api/stock
//	POST /app/api/stock/use
//	GET  /app/api/stock/{orderID}/{ingredientID}/history
func StockResource(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w, r) {
		return
	}

	segments := pathSegments(r, "/app/api/stock")
	switch {
	case len(segments) == 0:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listStock(w, r)
	case len(segments) == 1 && segments[0] == "use":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		useStock(w, r)
	case len(segments) == 3 && segments[2] == "history":
		orderID, err := parseID(segments[0])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		ingredientID, err := parseID(segments[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		stockHistory(w, r, orderID, ingredientID)
	default:
		http.NotFound(w, r)
	}
}

func listStock(w http.ResponseWriter, r *http.Request) {
	filter, err := lotFilterFromQuery(r)
	if err != nil {
		writeStoreError(w, r, "list stock", err)
		return
	}

	views, err := stockStore().ListLots(r.Context(), today(), filter)
	if err != nil {
		writeStoreError(w, r, "list stock", err)
		return
	}

	if metricsRegistry != nil && filter.IsUnfiltered() {
		metricsRegistry.ObserveLots(views)
	}

	responses := make([]lotResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, projectLot(view))
	}
	writeJSON(w, http.StatusOK, responses)
}

func useStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload consumeRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		applog.Debug(ctx, "invalid consumption payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input := inventory.ConsumeInput{
		OrderID:      payload.OrderID,
		IngredientID: payload.IngredientID,
		QuantityUsed: payload.QuantityUsed,
		RequestID:    applog.RequestID(ctx),
	}
	if userID, ok := currentUserID(r); ok {
		input.UsedBy = &userID
	}

	result, err := stockStore().Consume(ctx, input)
	if err != nil {
		writeStoreError(w, r, "use stock", err)
		return
	}

	applog.Info(ctx, "stock used",
		"orderID", result.OrderID,
		"ingredientID", result.IngredientID,
		"quantityUsed", result.QuantityUsed.String(),
		"remaining", result.RemainingQuantity.String(),
	)
	writeJSON(w, http.StatusOK, consumeResponse{
		OrderID:           result.OrderID,
		IngredientID:      result.IngredientID,
		IngredientName:    result.IngredientName,
		QuantityUsed:      result.QuantityUsed.String(),
		RemainingQuantity: result.RemainingQuantity.String(),
		FullyConsumed:     result.FullyConsumed,
	})
}

func stockHistory(w http.ResponseWriter, r *http.Request, orderID, ingredientID uint) {
	records, err := stockStore().ConsumptionHistory(r.Context(), orderID, ingredientID)
	if err != nil {
		writeStoreError(w, r, "load consumption history", err)
		return
	}

	responses := make([]consumptionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, consumptionResponse{
			ID:                record.ID,
			QuantityUsed:      record.QuantityUsed.String(),
			RemainingQuantity: record.RemainingQuantity.String(),
			UsedBy:            record.UsedBy,
			RequestID:         record.RequestID,
			CreatedAt:         record.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, responses)
}

// lotFilterFromQuery reads category, search, status, sort, order and include_consumed.
// Status accepts a comma separated list and may be repeated.
func lotFilterFromQuery(r *http.Request) (inventory.LotFilter, error) {
	query := r.URL.Query()
	filter := inventory.LotFilter{
		Category: query.Get("category"),
		Search:   query.Get("search"),
	}

	for _, raw := range query["status"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, err := inventory.ParseStatus(part)
			if err != nil {
				return inventory.LotFilter{}, err
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	sort, err := inventory.ParseLotSort(query.Get("sort"))
	if err != nil {
		return inventory.LotFilter{}, err
	}
	filter.Sort = sort

	switch strings.ToLower(strings.TrimSpace(query.Get("order"))) {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		return inventory.LotFilter{}, &inventory.ValidationError{Field: "order", Reason: fmt.Sprintf("unsupported value %q", query.Get("order"))}
	}

	if raw := strings.TrimSpace(query.Get("include_consumed")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return inventory.LotFilter{}, &inventory.ValidationError{Field: "include_consumed", Reason: fmt.Sprintf("must be a boolean, got %q", raw)}
		}
		filter.IncludeConsumed = include
	}

	return filter, nil
}

func projectLot(view inventory.LotView) lotResponse {
	resp := lotResponse{
		OrderID:         view.OrderID,
		IngredientID:    view.IngredientID,
		IngredientName:  view.IngredientName,
		Category:        view.Category,
		Unit:            view.Unit,
		Location:        view.Location,
		SupplierName:    view.SupplierName,
		DateReceived:    formatDate(view.DateReceived),
		InitialQuantity: view.InitialQuantity.String(),
		CurrentQuantity: view.CurrentQuantity.String(),
		Status:          view.Expiry.Status.String(),
		DaysLeft:        view.Expiry.DaysLeftValue(),
		Label:           inventory.DaysLeftLabel(view.Expiry),
		Problem:         view.Problem,
	}
	if view.Window != nil {
		minDays, maxDays := view.Window.MinDays, view.Window.MaxDays
		resp.SpoilageMinDays = &minDays
		resp.SpoilageMaxDays = &maxDays
	}
	if view.Expiry.Known() {
		expiry := formatDate(view.Expiry.ExpiryDate)
		resp.ExpiryDate = &expiry
	}
	return resp
}
