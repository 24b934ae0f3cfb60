package compass

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Event is a calendar event exactly as the portal returned it. The client
// never interprets or mutates its fields, the accessors below exist for
// downstream consumers and only read.
//
// Fields consumed downstream: id, longTitle, longTitleWithoutTime, start,
// finish, allDay, subjectTitle, subjectLongName, locations ([{name}]),
// managers ([{name}]), rollMarked, description.
type Event map[string]any

func (e Event) str(key string) string {
	switch v := e[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (e Event) Id() string {
	return e.str("id")
}

// Title prefers the title without the time prefix the portal sometimes adds.
func (e Event) Title() string {
	title := e.str("longTitleWithoutTime")
	if title != "" {
		return title
	}
	return e.str("longTitle")
}

func (e Event) Subject() string {
	subject := e.str("subjectLongName")
	if subject != "" {
		return subject
	}
	return e.str("subjectTitle")
}

func (e Event) Description() string {
	return e.str("description")
}

func (e Event) AllDay() bool {
	allDay, _ := e["allDay"].(bool)
	return allDay
}

func (e Event) RollMarked() bool {
	marked, _ := e["rollMarked"].(bool)
	return marked
}

func (e Event) names(key string) []string {
	list, ok := e[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, ok := obj["name"].(string)
		if !ok || name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Locations returns the names of the event's locations.
func (e Event) Locations() []string {
	return e.names("locations")
}

// Managers returns the names of the staff managing the event.
func (e Event) Managers() []string {
	return e.names("managers")
}

// Start parses the start timestamp, zoneless timestamps are taken to be in `loc`.
func (e Event) Start(loc *time.Location) (time.Time, error) {
	return ParseTimestamp(e.str("start"), loc)
}

// Finish parses the finish timestamp, zoneless timestamps are taken to be in `loc`.
func (e Event) Finish(loc *time.Location) (time.Time, error) {
	return ParseTimestamp(e.str("finish"), loc)
}

// matches the ASP.NET json date convention, ex. /Date(1736000000000+1100)/
var aspNetDateRegex = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the portal (and the mock) emit.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}

	groups := aspNetDateRegex.FindStringSubmatch(value)
	if len(groups) > 0 {
		millis, err := strconv.ParseInt(groups[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
		}
		return time.UnixMilli(millis).In(loc), nil
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unknown format", value)
}
