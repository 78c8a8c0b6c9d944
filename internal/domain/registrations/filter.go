package registrations

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/sbms-academy/server/internal/auth"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// QueryFilter is the only way a registration list query is described. It
// can only be produced by BuildFilter, so a non-employee filter is always
// pinned to the caller's own user id.
type QueryFilter struct {
	userID  string
	eventID string
	status  string
	limit   int
	offset  int
}

func (f QueryFilter) UserID() string  { return f.userID }
func (f QueryFilter) EventID() string { return f.eventID }
func (f QueryFilter) Status() string  { return f.status }
func (f QueryFilter) Limit() int      { return f.limit }
func (f QueryFilter) Offset() int     { return f.offset }

// BuildFilter turns raw query parameters into a QueryFilter for the caller.
// Bad paging values are corrected rather than rejected.
func BuildFilter(values url.Values, identity auth.Identity, role auth.Role) QueryFilter {
	filter := QueryFilter{
		eventID: strings.TrimSpace(values.Get("eventId")),
		status:  strings.TrimSpace(values.Get("status")),
		limit:   parsePaging(values.Get("limit"), DefaultLimit),
		offset:  parsePaging(values.Get("offset"), 0),
	}
	if filter.limit > MaxLimit {
		filter.limit = MaxLimit
	}
	if filter.limit == 0 {
		filter.limit = DefaultLimit
	}

	if role.IsEmployee {
		filter.userID = strings.TrimSpace(values.Get("userId"))
	} else {
		filter.userID = identity.ID
	}
	return filter
}

// ParsePaging applies the same correction rules to other paginated lists.
func ParsePaging(values url.Values) (limit int, offset int) {
	limit = parsePaging(values.Get("limit"), DefaultLimit)
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit, parsePaging(values.Get("offset"), 0)
}

func parsePaging(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
