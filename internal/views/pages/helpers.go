package pages

import (
	"strings"
	"time"

	"carinderia/internal/inventory"
)

// DefaultDash returns a dash when the provided value is empty or whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

// StatusClass is the CSS suffix for a status, e.g. "status-critical".
func StatusClass(status inventory.Status) string {
	return status.String()
}

// FormatDate renders a calendar date as "02 Jan 2006".
func FormatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("02 Jan 2006")
}
