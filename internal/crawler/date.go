package crawler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// listingDateLayouts are the formats the listing currently prints.
var listingDateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
}

// parseDate reads a listing date. Dates without a zone are UTC.
func parseDate(text string) (time.Time, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range listingDateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", text, err)
	}
	return t, nil
}
