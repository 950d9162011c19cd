package components

import (
	"net/url"
	"strings"
)

// Tab is one category filter on the dashboard.
type Tab struct {
	Label string
	Value string
}

func linkState(value, active string) string {
	if strings.EqualFold(value, active) {
		return "active"
	}
	return "inactive"
}

// tabHref links to the dashboard filtered by the tab's category. The "all"
// tab clears the filter; a non-blank search is carried along.
func tabHref(tab Tab, search string) string {
	query := url.Values{}
	if tab.Value != "" && tab.Value != "all" {
		query.Set("category", tab.Value)
	}
	if strings.TrimSpace(search) != "" {
		query.Set("search", search)
	}
	if encoded := query.Encode(); encoded != "" {
		return "/app?" + encoded
	}
	return "/app"
}
