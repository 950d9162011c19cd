package inventory

import (
	"fmt"
	"strings"
	"time"
)

// LongShelfLifeDays is the horizon at and beyond which a lot is treated as shelf stable.
const LongShelfLifeDays = 30

// Status classifies how close a stock lot is to its hard expiry.
type Status int

const (
	StatusUnknown Status = iota
	StatusExpired
	StatusExpiresToday
	StatusCritical
	StatusSafe
	StatusLongShelfLife
)

var statusNames = map[Status]string{
	StatusUnknown:       "unknown",
	StatusExpired:       "expired",
	StatusExpiresToday:  "expires_today",
	StatusCritical:      "critical",
	StatusSafe:          "safe",
	StatusLongShelfLife: "long_shelf_life",
}

// Statuses lists every status from most to least urgent.
func Statuses() []Status {
	return []Status{
		StatusExpired,
		StatusExpiresToday,
		StatusCritical,
		StatusSafe,
		StatusLongShelfLife,
		StatusUnknown,
	}
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

// MarshalText encodes the status using its stable name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a status name back into a Status. Matching ignores case and
// treats dashes and spaces as underscores.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	for status, name := range statusNames {
		if name == normalized {
			return status, nil
		}
	}
	return StatusUnknown, newValidationError("status", "unknown status %q", value)
}

// Urgency ranks statuses for sorting. Lower values are more urgent; Unknown sorts last.
func (s Status) Urgency() int {
	switch s {
	case StatusExpired:
		return 0
	case StatusExpiresToday:
		return 1
	case StatusCritical:
		return 2
	case StatusSafe:
		return 3
	case StatusLongShelfLife:
		return 4
	default:
		return 5
	}
}

// Window is the [MinDays, MaxDays] spoilage range counted from the received date.
type Window struct {
	MinDays int
	MaxDays int
}

// Validate rejects negative bounds and inverted windows.
func (w Window) Validate() error {
	if w.MinDays < 0 {
		return newValidationError("spoilage_min_days", "must not be negative, got %d", w.MinDays)
	}
	if w.MaxDays < 0 {
		return newValidationError("spoilage_max_days", "must not be negative, got %d", w.MaxDays)
	}
	if w.MaxDays < w.MinDays {
		return newValidationError("spoilage_max_days", "must be at least spoilage_min_days (%d), got %d", w.MinDays, w.MaxDays)
	}
	return nil
}

// OnsetDays is the width of the risk period before hard expiry.
func (w Window) OnsetDays() int {
	return w.MaxDays - w.MinDays
}

// ExpiryResult is the derived urgency information for one stock lot. DaysLeft,
// ExpiryDate and OnsetWindow are meaningful only when Known reports true.
type ExpiryResult struct {
	Status      Status
	DaysLeft    int
	ExpiryDate  time.Time
	OnsetWindow int
}

// Known reports whether a days-left figure could be computed.
func (r ExpiryResult) Known() bool {
	return r.Status != StatusUnknown
}

// DaysLeftValue returns nil when the days-left figure is undefined.
func (r ExpiryResult) DaysLeftValue() *int {
	if !r.Known() {
		return nil
	}
	days := r.DaysLeft
	return &days
}

// CalendarDate drops the time of day, keeping the date as observed in t's location.
// The result is midnight UTC so that day arithmetic never crosses a DST change.
func CalendarDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of whole calendar days from one date to another.
func DaysBetween(from, to time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((CalendarDate(to).Unix() - CalendarDate(from).Unix()) / secondsPerDay)
}

// ComputeExpiryStatus derives days-left and a status for a lot received on dateReceived,
// as seen on today. A nil window yields StatusUnknown without error.
func ComputeExpiryStatus(today, dateReceived time.Time, window *Window) (ExpiryResult, error) {
	if window == nil {
		return ExpiryResult{Status: StatusUnknown}, nil
	}
	if today.IsZero() {
		return ExpiryResult{}, newValidationError("today", "is required")
	}
	if dateReceived.IsZero() {
		return ExpiryResult{}, newValidationError("date_received", "is required")
	}
	if err := window.Validate(); err != nil {
		return ExpiryResult{}, err
	}

	expiryDate := CalendarDate(dateReceived).AddDate(0, 0, window.MaxDays)
	daysLeft := DaysBetween(today, expiryDate)
	onset := window.OnsetDays()

	return ExpiryResult{
		Status:      classify(daysLeft, onset),
		DaysLeft:    daysLeft,
		ExpiryDate:  expiryDate,
		OnsetWindow: onset,
	}, nil
}

func classify(daysLeft, onset int) Status {
	switch {
	case daysLeft < 0:
		return StatusExpired
	case daysLeft == 0:
		return StatusExpiresToday
	case daysLeft <= onset:
		return StatusCritical
	case daysLeft < LongShelfLifeDays:
		return StatusSafe
	default:
		return StatusLongShelfLife
	}
}

// DaysLeftLabel renders the dashboard label for a result.
func DaysLeftLabel(r ExpiryResult) string {
	switch {
	case !r.Known():
		return "No spoilage data"
	case r.DaysLeft < 0:
		return "Expired"
	case r.DaysLeft == 0:
		return "Expires today"
	case r.DaysLeft == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", r.DaysLeft)
	}
}
