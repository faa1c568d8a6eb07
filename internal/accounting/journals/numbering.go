package journals

import (
	"fmt"
	"strconv"
	"strings"
)

// EntryNumberPrefix returns the company-year prefix, e.g. "JE-2026-".
func EntryNumberPrefix(year int) string {
	return fmt.Sprintf("JE-%d-", year)
}

// NextEntryNumber derives the next entry number from the
// lexicographically-last existing number for the year, or starts the
// sequence at 1 when there is none. A malformed suffix also restarts at
// 1 rather than failing entry creation.
func NextEntryNumber(year int, lastNumber string) string {
	prefix := EntryNumberPrefix(year)
	next := 1
	if lastNumber != "" {
		suffix := lastNumber[strings.LastIndex(lastNumber, "-")+1:]
		if n, err := strconv.Atoi(suffix); err == nil && n > 0 {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%06d", prefix, next)
}
