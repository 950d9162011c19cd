package handlers

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	applog "carinderia/internal/log"
	"carinderia/internal/views/pages"
)

const genericLoginFailure = "We were unable to sign you in. Please try again."

// Login renders the kitchen sign-in form and processes submissions. A successful
// sign-in returns the user to the dashboard view they were sent away from.
func Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		showLogin(w, r)
	case http.MethodPost:
		submitLogin(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func showLogin(w http.ResponseWriter, r *http.Request) {
	if ActiveSession(r) {
		redirectTo(w, r, loginDestination(r))
		return
	}
	message := ""
	if sessionManager != nil {
		message = sessionManager.PopString(r.Context(), sessionLoginMessageKey)
	}
	renderLogin(w, r, message, "")
}

func submitLogin(w http.ResponseWriter, r *http.Request) {
	if sessionManager == nil || database == nil {
		applog.Warn(r.Context(), "login unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		http.Error(w, "authentication not available", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		renderLogin(w, r, "Email and password are required.", email)
		return
	}

	if !authenticate(w, r, email, password) {
		applog.Info(r.Context(), "sign-in rejected", "email", strings.ToLower(email))
		message := sessionManager.PopString(r.Context(), sessionLoginMessageKey)
		if message == "" {
			message = genericLoginFailure
		}
		renderLogin(w, r, message, email)
		return
	}

	destination := loginDestination(r)
	applog.Info(r.Context(), "staff signed in", "email", strings.ToLower(email), "destination", destination)
	redirectTo(w, r, destination)
}

// rememberReturnTo keeps the dashboard URL an anonymous GET asked for so that
// sign-in can send the user back to the same tab and search.
func rememberReturnTo(r *http.Request) {
	if sessionManager == nil || r.Method != http.MethodGet {
		return
	}
	if target := r.URL.RequestURI(); safeReturnTo(target) {
		sessionManager.Put(r.Context(), sessionReturnToKey, target)
	}
}

func loginDestination(r *http.Request) string {
	if sessionManager != nil {
		if target := sessionManager.PopString(r.Context(), sessionReturnToKey); safeReturnTo(target) {
			return target
		}
	}
	return "/app"
}

// safeReturnTo accepts only local dashboard pages, never API routes or other hosts.
func safeReturnTo(target string) bool {
	if target != "/app" && !strings.HasPrefix(target, "/app?") {
		return false
	}
	return !strings.ContainsAny(target, "\\\r\n")
}

func renderLogin(w http.ResponseWriter, r *http.Request, message, email string) {
	var component templ.Component
	if isHTMX(r) {
		component = pages.LoginPartial(message, email)
	} else {
		component = pages.Login(message, email)
	}
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render login component", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
