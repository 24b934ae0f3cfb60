package compass

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bellweaver-backend/internal/components/telemetry/telemetrytest"

	"github.com/stretchr/testify/require"
)

func newTestMock(t *testing.T) *MockClient {
	t.Helper()
	mock := NewMockClient(ClientOptions{
		BaseUrl:  "https://mock.compass.education/",
		Username: "parent",
		Password: "secret",
	}, telemetrytest.NewRecorder())
	require.Nil(t, mock.Login(context.Background()))
	return mock
}

func eventIds(events []Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.Id()
	}
	return ids
}

func TestMockJanuary(t *testing.T) {
	mock := newTestMock(t)

	events, err := mock.CalendarEvents(context.Background(), "2025-01-01", "2025-01-31", 100)
	require.Nil(t, err)
	require.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, eventIds(events))

	first, err := events[0].Start(time.UTC)
	require.Nil(t, err)
	require.Equal(t, time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), first)

	finish, err := events[0].Finish(time.UTC)
	require.Nil(t, err)
	require.Equal(t, 3*time.Hour, finish.Sub(first))

	for _, event := range events {
		start, err := event.Start(time.UTC)
		require.Nil(t, err)
		require.False(t, start.Before(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
		require.True(t, start.Before(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
	}
}

func TestMockEndDateIsInclusive(t *testing.T) {
	mock := newTestMock(t)

	// the latest catalogue event starts exactly 10 days after the anchor
	events, err := mock.CalendarEvents(context.Background(), "2025-03-01", "2025-03-11", 0)
	require.Nil(t, err)
	require.Len(t, events, 6)

	events, err = mock.CalendarEvents(context.Background(), "2025-03-01", "2025-03-10", 0)
	require.Nil(t, err)
	require.Equal(t, []string{"1", "3", "4", "5", "6"}, eventIds(events))
}

func TestMockNarrowRange(t *testing.T) {
	mock := newTestMock(t)

	events, err := mock.CalendarEvents(context.Background(), "2025-01-01", "2025-01-04", 100)
	require.Nil(t, err)
	require.Equal(t, []string{"3", "5"}, eventIds(events))

	events, err = mock.CalendarEvents(context.Background(), "2025-01-01", "2025-01-01", 100)
	require.Nil(t, err)
	require.NotNil(t, events)
	require.Empty(t, events)
}

func TestMockLimitPreservesOrder(t *testing.T) {
	mock := newTestMock(t)

	events, err := mock.CalendarEvents(context.Background(), "2025-01-01", "2025-01-31", 2)
	require.Nil(t, err)
	require.Equal(t, []string{"1", "2"}, eventIds(events))
}

func TestMockEventFields(t *testing.T) {
	mock := newTestMock(t)

	events, err := mock.CalendarEvents(context.Background(), "2025-01-01", "2025-01-31", 100)
	require.Nil(t, err)

	dressDay := events[2]
	require.Equal(t, "Free Dress Day", dressDay.Title())
	require.Equal(t, "Free Dress Day - Community Fund", dressDay["longTitle"])
	require.True(t, dressDay.AllDay())
	require.Equal(t, []string{"School"}, dressDay.Locations())
	require.Equal(t, []string{"Principal"}, dressDay.Managers())

	carnival := events[3]
	require.True(t, carnival.RollMarked())
	require.Equal(t, "Sports Carnival", carnival.Subject())
}

func TestMockRequiresLogin(t *testing.T) {
	mock := NewMockClient(ClientOptions{BaseUrl: "https://mock.compass.education"}, telemetrytest.NewRecorder())

	_, err := mock.CalendarEvents(context.Background(), "2025-01-01", "2025-01-31", 100)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = mock.UserDetails(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestMockInvalidDate(t *testing.T) {
	mock := newTestMock(t)

	_, err := mock.CalendarEvents(context.Background(), "01/01/2025", "2025-01-31", 100)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestMockSession(t *testing.T) {
	mock := newTestMock(t)

	session := mock.Session()
	require.Equal(t, "https://mock.compass.education", session.BaseUrl)
	require.Equal(t, "parent", session.Username)
	require.True(t, session.Authenticated)
	require.NotNil(t, session.UserId)
	require.Equal(t, int64(12345), *session.UserId)

	details, err := mock.UserDetails(context.Background())
	require.Nil(t, err)
	require.Equal(t, "12345", details["userId"].(fmt.Stringer).String())

	require.Nil(t, mock.Close())
	require.False(t, mock.Session().Authenticated)
}

func TestMockSessionRelativeBaseUrl(t *testing.T) {
	mock := NewMockClient(ClientOptions{BaseUrl: " compass.example/ "}, telemetrytest.NewRecorder())
	require.Equal(t, "compass.example", mock.Session().BaseUrl)

	mock = NewMockClient(ClientOptions{BaseUrl: "/"}, telemetrytest.NewRecorder())
	require.Equal(t, "", mock.Session().BaseUrl)
}
