package verify

import "time"

const isoDate = "2006-01-02"

// Formats tried when comparing dates across documents, in priority order:
// YYYY-MM-DD, DD-MM-YYYY, MM/DD/YYYY, DD/MM/YYYY. The first successful
// match wins, so an ambiguous numeric date like 03/04/2000 resolves as
// MM/DD/YYYY. The non-padded slash layouts follow their padded counterparts
// to accept single-digit dates like 3/4/1990 with the same month-first
// precedence. Changing this order changes which cross-document DOB pairs
// compare equal.
var flexibleDateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"02/01/2006",
	"1/2/2006",
	"2/1/2006",
}

// parseFlexibleDate parses a date string against the flexible format list.
func parseFlexibleDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range flexibleDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sameDay reports whether two times fall on the same calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
