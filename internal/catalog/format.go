package catalog

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Display locale for prices and counters
var locale = language.Make("en-IN")

// FormatNumber groups v the way the dashboards show prices, with at most
// three fraction digits: 1000 becomes "1,000".
func FormatNumber(v float64) string {
	p := message.NewPrinter(locale)
	return p.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// ResolveAsset turns a server-relative asset path into an absolute URL.
// Absolute URLs and empty paths are returned unchanged.
func ResolveAsset(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "//") {
		return path
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Timestamp layouts sent by the services. Spring's LocalDateTime has no zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// TimestampLabelLayout is the layout of labels returned by FormatTimestamp
const TimestampLabelLayout = "02 Jan 2006, 15:04"

// ParseTimestamp parses a server timestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp returns a display label for a server timestamp. Values that
// do not parse are shown as sent.
func FormatTimestamp(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return t.Format(TimestampLabelLayout)
}
