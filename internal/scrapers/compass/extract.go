package compass

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SessionMetadata holds the identifiers the portal embeds in its pages,
// a nil field means the corresponding pattern was not found.
type SessionMetadata struct {
	UserId    *int64
	ConfigKey *string
}

// ex. window.Compass.organisationUserId = 12345 or "organisationUserId": "12345"
var userIdRegex = regexp.MustCompile(`organisationUserId["']?\s*[:=]\s*["']?(\d+)`)

// ex. schoolConfigKey: 'abc-123'
var configKeyRegex = regexp.MustCompile(`schoolConfigKey["']?\s*[:=]\s*["']([^"']+)["']`)

// ExtractSessionMetadata searches an html/js blob for the organisation user id
// and the school config key. It never fails, misses are left nil.
func ExtractSessionMetadata(text string) SessionMetadata {
	var out SessionMetadata

	groups := userIdRegex.FindStringSubmatch(text)
	if len(groups) >= 2 {
		id, err := strconv.ParseInt(groups[1], 10, 64)
		if err == nil {
			out.UserId = &id
		}
	}

	groups = configKeyRegex.FindStringSubmatch(text)
	if len(groups) >= 2 {
		key := groups[1]
		out.ConfigKey = &key
	}

	return out
}

// ExtractFormFields maps the name of every <input> in the document to its
// value (empty if there is no value attribute). Inputs without a name are
// skipped, the type of the input does not matter.
func ExtractFormFields(html string) map[string]string {
	fields := map[string]string{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fields
	}
	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" {
			return
		}
		fields[name] = s.AttrOr("value", "")
	})

	return fields
}
