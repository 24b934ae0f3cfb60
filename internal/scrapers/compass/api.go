package compass

import (
	"context"
)

// DefaultEventLimit is used by CalendarEvents when it is given a limit <= 0.
const DefaultEventLimit = 100

// API is the operation contract shared by the real portal client and the mock,
// dependents should only ever hold an API so either can be swapped in.
type API interface {
	// Login authenticates the session. It must succeed before any other
	// operation is called.
	Login(ctx context.Context) error

	// CalendarEvents returns the events of the logged in user between
	// startDate and endDate (inclusive, both formatted as YYYY-MM-DD),
	// returning at most `limit` events. Events are returned as the portal
	// sent them, in order, except that list items which are not json objects
	// are dropped. A payload that is not a list yields no events.
	CalendarEvents(ctx context.Context, startDate, endDate string, limit int) ([]Event, error)

	// UserDetails returns the profile of the logged in user.
	UserDetails(ctx context.Context) (UserDetails, error)

	// Session returns a snapshot of the session state.
	Session() Session

	// Close releases the underlying connections.
	Close() error
}

// Session is a snapshot of a client session, the password is never part of it.
type Session struct {
	BaseUrl       string
	Username      string
	Authenticated bool
	// UserId and ConfigKey are nil until they have been extracted from a page.
	UserId    *int64
	ConfigKey *string
}

func (s Session) clone() Session {
	out := s
	if s.UserId != nil {
		id := *s.UserId
		out.UserId = &id
	}
	if s.ConfigKey != nil {
		key := *s.ConfigKey
		out.ConfigKey = &key
	}
	return out
}

// UserDetails is the opaque user profile returned by the portal.
type UserDetails map[string]any

var (
	_ API = (*Client)(nil)
	_ API = (*MockClient)(nil)
)
