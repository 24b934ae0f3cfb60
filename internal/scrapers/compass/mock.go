package compass

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bellweaver-backend/internal/components/assert"
	"bellweaver-backend/internal/components/telemetry"
)

const (
	report_mock_events = "mock.calendar-events"

	mockUserId          = 12345
	mockTimestampLayout = "2006-01-02T15:04:05"
)

// MockClient satisfies API without any network access, it returns a fixed
// catalogue of synthetic events anchored to the requested start date. It does
// not simulate failures, token extraction or session bootstrap.
type MockClient struct {
	tel     telemetry.API
	session Session
}

func NewMockClient(opts ClientOptions, tel telemetry.API) *MockClient {
	assert.NotNil(tel)

	// the mock never sends requests so relative urls are fine
	baseUrl := trimBaseUrl(opts.BaseUrl)

	userId := int64(mockUserId)
	return &MockClient{
		tel: telemetry.NewScopedAPI("compass_mock", tel),
		session: Session{
			BaseUrl:  baseUrl,
			Username: opts.Username,
			UserId:   &userId,
		},
	}
}

func (m *MockClient) Session() Session {
	return m.session.clone()
}

// Login always succeeds.
func (m *MockClient) Login(context.Context) error {
	m.session.Authenticated = true
	return nil
}

type mockEvent struct {
	id          string
	title       string
	shortTitle  string
	offset      time.Duration
	duration    time.Duration
	allDay      bool
	subject     string
	subjectLong string
	location    string
	manager     string
	rollMarked  bool
	description string
}

const day = 24 * time.Hour

var mockCatalogue = []mockEvent{
	{
		id:          "1",
		title:       "Year 3 Excursion to Taronga Zoo",
		offset:      5 * day,
		duration:    3 * time.Hour,
		subject:     "Excursion",
		subjectLong: "Excursion",
		location:    "Taronga Zoo",
		manager:     "Mrs Smith",
		description: "Permission slip required. Cost: $25",
	},
	{
		id:          "2",
		title:       "Year 3 Music Performance",
		offset:      10 * day,
		duration:    time.Hour,
		subject:     "Music",
		subjectLong: "Music Performance",
		location:    "School Hall",
		manager:     "Mr Johnson",
		description: "Evening performance. Tickets available online.",
	},
	{
		id:          "3",
		title:       "Free Dress Day - Community Fund",
		shortTitle:  "Free Dress Day",
		offset:      3 * day,
		allDay:      true,
		subject:     "Event",
		subjectLong: "Free Dress Day",
		location:    "School",
		manager:     "Principal",
		description: "Wear your favorite outfit. Gold coin donation.",
	},
	{
		id:          "4",
		title:       "Year 2-3 Sports Carnival",
		offset:      7 * day,
		duration:    4 * time.Hour,
		subject:     "Sports",
		subjectLong: "Sports Carnival",
		location:    "School Oval",
		manager:     "PE Department",
		rollMarked:  true,
		description: "House colors provided. Parents welcome to attend.",
	},
	{
		id:          "5",
		title:       "Whole School Assembly",
		offset:      2 * day,
		duration:    time.Hour,
		subject:     "Assembly",
		subjectLong: "Whole School Assembly",
		location:    "School Hall",
		manager:     "Principal",
		rollMarked:  true,
		description: "General announcements and awards.",
	},
	{
		id:          "6",
		title:       "Year 4 Excursion - Museum Visit",
		offset:      8 * day,
		duration:    3 * time.Hour,
		subject:     "Excursion",
		subjectLong: "Excursion",
		location:    "State Museum",
		manager:     "Mrs Davis",
		description: "Year 4 only. Permission slip due by Friday.",
	},
}

func (e mockEvent) render(anchor time.Time) (Event, time.Time) {
	start := anchor.Add(e.offset)
	shortTitle := e.shortTitle
	if shortTitle == "" {
		shortTitle = e.title
	}
	return Event{
		"id":                   e.id,
		"longTitle":            e.title,
		"longTitleWithoutTime": shortTitle,
		"start":                start.Format(mockTimestampLayout),
		"finish":               start.Add(e.duration).Format(mockTimestampLayout),
		"allDay":               e.allDay,
		"subjectTitle":         e.subject,
		"subjectLongName":      e.subjectLong,
		"locations":            []any{map[string]any{"name": e.location}},
		"managers":             []any{map[string]any{"name": e.manager}},
		"rollMarked":           e.rollMarked,
		"description":          e.description,
	}, start
}

// CalendarEvents returns the catalogue events starting on a day within
// [startDate, endDate], in catalogue order, truncated to `limit`.
func (m *MockClient) CalendarEvents(_ context.Context, startDate, endDate string, limit int) ([]Event, error) {
	if !m.session.Authenticated {
		return nil, ErrNotAuthenticated
	}
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	endExclusive := end.Add(day)

	events := []Event{}
	for _, entry := range mockCatalogue {
		if len(events) >= limit {
			break
		}
		event, eventStart := entry.render(start)
		if eventStart.Before(start) || !eventStart.Before(endExclusive) {
			continue
		}
		events = append(events, event)
	}

	m.tel.ReportDebug(report_mock_events, startDate, endDate, fmt.Sprintf("returned=%d", len(events)))
	return events, nil
}

func (m *MockClient) UserDetails(context.Context) (UserDetails, error) {
	if !m.session.Authenticated {
		return nil, ErrNotAuthenticated
	}
	return UserDetails{
		"userId":          json.Number(strconv.Itoa(mockUserId)),
		"userFullName":    "Test Parent",
		"userFirstName":   "Test",
		"userLastName":    "Parent",
		"userDisplayCode": "TPAR",
		"userSchoolId":    "MOCK",
		"userRole":        "parent",
	}, nil
}

// Close is a no-op besides ending the session.
func (m *MockClient) Close() error {
	m.session.Authenticated = false
	return nil
}
