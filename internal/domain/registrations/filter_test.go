package registrations

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/sbms-academy/server/internal/auth"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBuildFilterDefaults(t *testing.T) {
	f := BuildFilter(url.Values{}, auth.Identity{ID: "user-1"}, auth.Role{})
	require.Equal(t, DefaultLimit, f.Limit())
	require.Equal(t, 0, f.Offset())
	require.Equal(t, "user-1", f.UserID())
	require.Empty(t, f.EventID())
	require.Empty(t, f.Status())
}

func TestBuildFilterWindow(t *testing.T) {
	values := url.Values{"limit": {"5"}, "offset": {"10"}}
	f := BuildFilter(values, auth.Identity{ID: "user-1"}, auth.Role{})
	require.Equal(t, 5, f.Limit())
	require.Equal(t, 10, f.Offset())
}

func TestBuildFilterCorrectsBadPaging(t *testing.T) {
	tests := []struct {
		name   string
		limit  string
		offset string
		want   [2]int
	}{
		{name: "not numbers", limit: "abc", offset: "x", want: [2]int{DefaultLimit, 0}},
		{name: "negative", limit: "-5", offset: "-1", want: [2]int{DefaultLimit, 0}},
		{name: "zero limit", limit: "0", offset: "0", want: [2]int{DefaultLimit, 0}},
		{name: "too large", limit: "5000", offset: "3", want: [2]int{MaxLimit, 3}},
		{name: "float", limit: "2.5", offset: "1e3", want: [2]int{DefaultLimit, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := BuildFilter(url.Values{"limit": {tt.limit}, "offset": {tt.offset}}, auth.Identity{ID: "u"}, auth.Role{})
			require.Equal(t, tt.want[0], f.Limit())
			require.Equal(t, tt.want[1], f.Offset())
		})
	}
}

func TestBuildFilterEmployeePassThrough(t *testing.T) {
	values := url.Values{"userId": {"someone-else"}, "eventId": {"evt-1"}, "status": {"pending"}}
	f := BuildFilter(values, auth.Identity{ID: "staff-1"}, auth.Role{IsEmployee: true})
	require.Equal(t, "someone-else", f.UserID())
	require.Equal(t, "evt-1", f.EventID())
	require.Equal(t, "pending", f.Status())

	f = BuildFilter(url.Values{}, auth.Identity{ID: "staff-1"}, auth.Role{IsEmployee: true})
	require.Empty(t, f.UserID(), "employees see everyone unless they filter")
}

func TestBuildFilterNonEmployeePinnedToSelf(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		identity := auth.Identity{ID: rapid.StringMatching(`[a-f0-9-]{1,36}`).Draw(rt, "identity")}
		values := url.Values{}
		if rapid.Bool().Draw(rt, "withUserID") {
			values.Set("userId", rapid.String().Draw(rt, "userId"))
		}
		values.Set("eventId", rapid.String().Draw(rt, "eventId"))
		values.Set("status", rapid.SampledFrom([]string{"", "pending", "completed", "failed"}).Draw(rt, "status"))

		f := BuildFilter(values, identity, auth.Role{IsEmployee: false})
		if f.UserID() != identity.ID {
			rt.Fatalf("user id %q not pinned to identity %q", f.UserID(), identity.ID)
		}
	})
}

func TestBuildFilterPagingAlwaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := url.Values{}
		if rapid.Bool().Draw(rt, "numericLimit") {
			values.Set("limit", strconv.Itoa(rapid.IntRange(-1000, 100000).Draw(rt, "limit")))
		} else {
			values.Set("limit", rapid.String().Draw(rt, "rawLimit"))
		}
		values.Set("offset", strconv.Itoa(rapid.IntRange(-1000, 100000).Draw(rt, "offset")))

		f := BuildFilter(values, auth.Identity{ID: "u"}, auth.Role{IsEmployee: rapid.Bool().Draw(rt, "employee")})
		if f.Limit() < 1 || f.Limit() > MaxLimit {
			rt.Fatalf("limit %d out of range", f.Limit())
		}
		if f.Offset() < 0 {
			rt.Fatalf("offset %d negative", f.Offset())
		}
	})
}

func TestParsePaging(t *testing.T) {
	limit, offset := ParsePaging(url.Values{"limit": {"20"}, "offset": {"40"}})
	require.Equal(t, 20, limit)
	require.Equal(t, 40, offset)

	limit, offset = ParsePaging(url.Values{"limit": {"-1"}})
	require.Equal(t, DefaultLimit, limit)
	require.Equal(t, 0, offset)
}
