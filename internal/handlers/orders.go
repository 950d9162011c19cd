package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"carinderia/internal/inventory"
	applog "carinderia/internal/log"
	"carinderia/models"
)

type orderResponse struct {
	ID           uint          `json:"id"`
	SupplierName string        `json:"supplier_name"`
	DateReceived string        `json:"date_received"`
	CreatedAt    time.Time     `json:"created_at"`
	Items        []lotResponse `json:"items,omitempty"`
}

type orderRequest struct {
	SupplierName string        `json:"supplier_name"`
	DateReceived string        `json:"date_received"`
	Items        []itemRequest `json:"items"`
}

type itemRequest struct {
	IngredientID    uint            `json:"ingredient_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	Location        string          `json:"location"`
	SpoilageMinDays *int            `json:"spoilage_min_days"`
	SpoilageMaxDays *int            `json:"spoilage_max_days"`
}

func (p itemRequest) input() inventory.ItemInput {
	return inventory.ItemInput{
		IngredientID:    p.IngredientID,
		Quantity:        p.Quantity,
		Unit:            p.Unit,
		Location:        p.Location,
		SpoilageMinDays: p.SpoilageMinDays,
		SpoilageMaxDays: p.SpoilageMaxDays,
	}
}

// OrderResource serves supplier deliveries under /app/api/orders.
func OrderResource(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w, r) {
		return
	}

	segments := pathSegments(r, "/app/api/orders")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listOrders(w, r)
		case http.MethodPost:
			createOrder(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	orderID, err := parseID(segments[0])
	if err != nil {
		applog.Debug(r.Context(), "invalid order identifier", "identifier", segments[0], "error", err)
		http.NotFound(w, r)
		return
	}

	switch {
	case len(segments) == 1:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showOrder(w, r, orderID)
	case len(segments) == 2 && segments[1] == "items":
		switch r.Method {
		case http.MethodGet:
			listOrderItems(w, r, orderID)
		case http.MethodPost:
			addOrderItem(w, r, orderID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := stockStore().ListOrders(r.Context())
	if err != nil {
		writeStoreError(w, r, "list orders", err)
		return
	}

	responses := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, projectOrder(order))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showOrder(w http.ResponseWriter, r *http.Request, orderID uint) {
	store := stockStore()
	order, err := store.FindOrder(r.Context(), orderID)
	if err != nil {
		writeStoreError(w, r, "load order", err)
		return
	}
	items, err := store.OrderItems(r.Context(), orderID, today())
	if err != nil {
		writeStoreError(w, r, "load order items", err)
		return
	}

	resp := projectOrder(order)
	resp.Items = make([]lotResponse, 0, len(items))
	for _, item := range items {
		resp.Items = append(resp.Items, projectLot(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload orderRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		applog.Debug(ctx, "invalid order payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	received, err := parseDate(payload.DateReceived)
	if err != nil {
		writeStoreError(w, r, "create order", err)
		return
	}

	input := inventory.OrderInput{
		SupplierName: payload.SupplierName,
		DateReceived: received,
		Items:        make([]inventory.ItemInput, 0, len(payload.Items)),
	}
	for _, item := range payload.Items {
		input.Items = append(input.Items, item.input())
	}

	order, err := stockStore().ReceiveOrder(ctx, input)
	if err != nil {
		writeStoreError(w, r, "create order", err)
		return
	}

	applog.Info(ctx, "order received", "orderID", order.ID, "supplier", order.SupplierName, "items", len(input.Items))
	writeJSON(w, http.StatusCreated, projectOrder(order))
}

func listOrderItems(w http.ResponseWriter, r *http.Request, orderID uint) {
	items, err := stockStore().OrderItems(r.Context(), orderID, today())
	if err != nil {
		writeStoreError(w, r, "load order items", err)
		return
	}

	responses := make([]lotResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, projectLot(item))
	}
	writeJSON(w, http.StatusOK, responses)
}

func addOrderItem(w http.ResponseWriter, r *http.Request, orderID uint) {
	ctx := r.Context()

	var payload itemRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		applog.Debug(ctx, "invalid order item payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	store := stockStore()
	lot, err := store.AddOrderItem(ctx, orderID, payload.input())
	if err != nil {
		writeStoreError(w, r, "add order item", err)
		return
	}

	view, err := store.FindLot(ctx, today(), lot.OrderID, lot.IngredientID)
	if err != nil {
		writeStoreError(w, r, "load order item", err)
		return
	}

	applog.Info(ctx, "order item added", "orderID", orderID, "ingredientID", lot.IngredientID)
	writeJSON(w, http.StatusCreated, projectLot(view))
}

func projectOrder(order models.Order) orderResponse {
	return orderResponse{
		ID:           order.ID,
		SupplierName: order.SupplierName,
		DateReceived: formatDate(inventory.CalendarDate(order.DateReceived)),
		CreatedAt:    order.CreatedAt,
	}
}
