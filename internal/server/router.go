package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"carinderia/internal/handlers"
	applog "carinderia/internal/log"
	"carinderia/internal/metrics"
)

const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 64
)

func newRouter(registry *metrics.Registry) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	if registry != nil {
		mux.Handle("/metrics", registry.Handler())
		applog.Debug(context.Background(), "route registered", "path", "/metrics")
	}
	mux.HandleFunc("/login", handlers.Login)
	applog.Debug(context.Background(), "route registered", "path", "/login")
	mux.HandleFunc("/logout", handlers.Logout)
	applog.Debug(context.Background(), "route registered", "path", "/logout")

	protect := func(path string, h http.HandlerFunc) {
		mux.Handle(path, handlers.RequireAuthentication(h))
		applog.Debug(context.Background(), "route registered", "path", path, "protected", true)
	}
	protect("/app", handlers.Dashboard)
	protect("/app/api/ingredients", handlers.IngredientResource)
	protect("/app/api/ingredients/", handlers.IngredientResource)
	protect("/app/api/orders", handlers.OrderResource)
	protect("/app/api/orders/", handlers.OrderResource)
	protect("/app/api/stock", handlers.StockResource)
	protect("/app/api/stock/", handlers.StockResource)
	protect("/app/api/suppliers", handlers.Suppliers)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/app", http.StatusSeeOther)
	})
	applog.Debug(context.Background(), "route registered", "path", "/")
	return mux
}

// withRequestID tags every request with an identifier, reusing a well-formed
// X-Request-ID from the client, and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(applog.WithRequestID(r.Context(), id)))
	})
}
