package handlers

import (
	"net/http"
	"strconv"
)

const maxSupplierSuggestions = 25

// Suppliers returns distinct supplier names matching ?search= for autocomplete.
func Suppliers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireStore(w, r) {
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxSupplierSuggestions)
	}

	names, err := stockStore().SearchSuppliers(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		writeStoreError(w, r, "search suppliers", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}
