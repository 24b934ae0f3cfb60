// Package icsexport renders compass events as an iCalendar document so they
// can be subscribed to from any calendar app.
package icsexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"bellweaver-backend/internal/components/htmlutil"
	"bellweaver-backend/internal/scrapers/compass"

	ical "github.com/arran4/golang-ical"
)

const (
	productId       = "-//bellweaver//compass-cli//EN"
	calendarName    = "Compass"
	defaultDuration = time.Hour
)

var now = time.Now

// Uid returns the iCalendar UID of an event.
func Uid(event compass.Event) string {
	return fmt.Sprintf("%s@compass", event.Id())
}

// Write serializes the events into w and returns how many were written.
// Events without an id or a parseable start are left out. Zoneless portal
// timestamps are read in loc.
func Write(w io.Writer, events []compass.Event, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productId)
	cal.SetXWRCalName(calendarName)
	cal.SetXWRTimezone(loc.String())

	stamp := now().UTC()
	written := 0
	for _, event := range events {
		if event.Id() == "" {
			continue
		}
		start, err := event.Start(loc)
		if err != nil {
			continue
		}
		finish, err := event.Finish(loc)
		if err != nil || finish.Before(start) {
			finish = start
		}

		vevent := cal.AddEvent(Uid(event))
		vevent.SetDtStampTime(stamp)
		if event.AllDay() {
			// DTEND of an all day event is exclusive
			end := time.Date(finish.Year(), finish.Month(), finish.Day()+1, 0, 0, 0, 0, finish.Location())
			vevent.SetAllDayStartAt(start)
			vevent.SetAllDayEndAt(end)
		} else {
			if !finish.After(start) {
				finish = start.Add(defaultDuration)
			}
			vevent.SetStartAt(start)
			vevent.SetEndAt(finish)
		}

		vevent.SetSummary(event.Title())
		locations := event.Locations()
		if len(locations) > 0 {
			vevent.SetLocation(strings.Join(locations, ", "))
		}
		description := htmlutil.Markdown(event.Description())
		managers := event.Managers()
		if len(managers) > 0 {
			if description != "" {
				description += "\n\n"
			}
			description += "Staff: " + strings.Join(managers, ", ")
		}
		if description != "" {
			vevent.SetDescription(description)
		}
		subject := event.Subject()
		if subject != "" {
			vevent.AddProperty(ical.ComponentPropertyCategories, subject)
		}
		written++
	}

	err := cal.SerializeTo(w)
	if err != nil {
		return 0, err
	}
	return written, nil
}
