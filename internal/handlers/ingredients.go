package handlers

import (
	"net/http"
	"time"

	"carinderia/internal/inventory"
	applog "carinderia/internal/log"
	"carinderia/models"
)

type ingredientResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
}

type ingredientRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

// IngredientResource serves the ingredient catalog under /app/api/ingredients.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w, r) {
		return
	}

	segments := pathSegments(r, "/app/api/ingredients")
	switch len(segments) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 1:
		id, err := parseID(segments[0])
		if err != nil {
			applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", segments[0], "error", err)
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showIngredient(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ingredients, err := stockStore().ListIngredients(r.Context(), inventory.IngredientFilter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
	})
	if err != nil {
		writeStoreError(w, r, "list ingredients", err)
		return
	}

	responses := make([]ingredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	ingredient, err := stockStore().FindIngredient(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "load ingredient", err)
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	var payload ingredientRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		applog.Debug(r.Context(), "invalid ingredient payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ingredient, err := stockStore().CreateIngredient(r.Context(), inventory.IngredientInput{
		Name:     payload.Name,
		Category: payload.Category,
		Unit:     payload.Unit,
	})
	if err != nil {
		writeStoreError(w, r, "create ingredient", err)
		return
	}

	applog.Info(r.Context(), "ingredient created", "ingredientID", ingredient.ID, "name", ingredient.Name)
	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:        ingredient.ID,
		Name:      ingredient.Name,
		Category:  ingredient.Category,
		Unit:      ingredient.Unit,
		CreatedAt: ingredient.CreatedAt,
	}
}
