package ledger

import (
	"strconv"
	"strings"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// ListQuery is a validated page request over the event log.
type ListQuery struct {
	Limit     int
	Offset    int
	EventType string
}

// ParseListQuery never fails: empty or non-numeric values fall back to the
// defaults and negative values are clamped to zero.
func ParseListQuery(limit, offset, eventType string) ListQuery {
	q := ListQuery{
		Limit:     parseNonNegative(limit, DefaultListLimit),
		Offset:    parseNonNegative(offset, 0),
		EventType: strings.TrimSpace(eventType),
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	return q
}

func parseNonNegative(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if n < 0 {
		return 0
	}
	return n
}
