package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"carinderia/internal/handlers"
	applog "carinderia/internal/log"
	"carinderia/internal/metrics"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr     string
	Session  SessionConfig
	Database *gorm.DB
	// Location defines the calendar used for "today". Defaults to UTC.
	Location *time.Location
	// Metrics receives request and consumption metrics. A fresh registry is
	// created when nil.
	Metrics *metrics.Registry
}

// SessionConfig controls session behavior for the HTTP server.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// Server owns the http.Server for the inventory service.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds the inventory web server: session-backed dashboard pages, the JSON
// stock API and the operational endpoints.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()
	cfg.Session = cfg.Session.withDefaults()
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}

	sessionManager := newSessionManager(cfg.Session)
	handlers.Configure(sessionManager, cfg.Database)
	handlers.ConfigureInventory(cfg.Location, cfg.Metrics)

	location := "UTC"
	if cfg.Location != nil {
		location = cfg.Location.String()
	}
	applog.Debug(ctx, "server configured",
		"addr", cfg.Addr,
		"sessionCookie", cfg.Session.CookieName,
		"sessionLifetime", cfg.Session.Lifetime.String(),
		"hasDatabase", cfg.Database != nil,
		"timezone", location,
	)

	handler := withRequestID(cfg.Metrics.Instrument(sessionManager.LoadAndSave(newRouter(cfg.Metrics))))
	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Lifetime <= 0 {
		c.Lifetime = 12 * time.Hour
	}
	if strings.TrimSpace(c.CookieName) == "" {
		c.CookieName = "carinderia_session"
	}
	return c
}

func newSessionManager(cfg SessionConfig) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = cfg.Lifetime
	sm.Cookie.Name = cfg.CookieName
	sm.Cookie.Domain = cfg.CookieDomain
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.CookieSecure
	return sm
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Info(context.Background(), "server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Info(ctx, "server draining connections")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
