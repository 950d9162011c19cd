package handlers

import (
	"net/http"

	templpkg "github.com/a-h/templ"

	"carinderia/internal/inventory"
	applog "carinderia/internal/log"
	"carinderia/internal/views/pages"
)

// Dashboard renders the stock overview, most urgent lots first.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	category := query.Get("category")
	search := query.Get("search")

	var views []inventory.LotView
	if database != nil {
		var err error
		views, err = stockStore().ListLots(r.Context(), today(), inventory.LotFilter{
			Category: category,
			Search:   search,
			Sort:     inventory.SortUrgency,
		})
		if err != nil {
			applog.Error(r.Context(), "failed to load dashboard stock", "error", err)
			http.Error(w, "unable to load stock", http.StatusInternalServerError)
			return
		}
	} else {
		applog.Debug(r.Context(), "dashboard rendered without database")
	}

	data := pages.NewDashboardData(views, inventory.DefaultCategories, category, search)
	data.UserName = currentUserName(r)
	data.Today = today().Format(dateLayout)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var component templpkg.Component
	if isHTMX(r) {
		component = pages.DashboardPartial(data)
	} else {
		component = pages.Dashboard(data)
	}

	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render dashboard", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
