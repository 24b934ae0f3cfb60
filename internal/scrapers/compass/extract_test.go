package compass

import (
	_ "embed"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/login_page.html
var loginPageHtml string

//go:embed testdata/home_page.html
var homePageHtml string

func TestExtractSessionMetadataHomePage(t *testing.T) {
	metadata := ExtractSessionMetadata(homePageHtml)
	require.NotNil(t, metadata.UserId)
	require.Equal(t, int64(4242), *metadata.UserId)
	require.NotNil(t, metadata.ConfigKey)
	require.Equal(t, "b7f2c1e0-9d1a-4c3e-8f00-5a6b7c8d9e0f", *metadata.ConfigKey)
}

func TestExtractSessionMetadataUserId(t *testing.T) {
	testCases := []struct {
		text     string
		expected int64
	}{
		{text: `window.Compass.organisationUserId = 12345;`, expected: 12345},
		{text: `{"organisationUserId":678}`, expected: 678},
		{text: `{"organisationUserId" : "91011"}`, expected: 91011},
		{text: `{'organisationUserId': 5}`, expected: 5},
		{text: `organisationUserId=77`, expected: 77},
		{text: "organisationUserId:\n\t 31", expected: 31},
		{text: `organisationUserId: 1; organisationUserId: 2`, expected: 1},
	}

	for _, test := range testCases {
		metadata := ExtractSessionMetadata(test.text)
		require.NotNil(t, metadata.UserId, test.text)
		require.Equal(t, test.expected, *metadata.UserId, test.text)
	}
}

func TestExtractSessionMetadataConfigKey(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{text: `schoolConfigKey: "abc-123"`, expected: "abc-123"},
		{text: `"schoolConfigKey":'xyz'`, expected: "xyz"},
		{text: `schoolConfigKey = "with space"`, expected: "with space"},
	}

	for _, test := range testCases {
		metadata := ExtractSessionMetadata(test.text)
		require.NotNil(t, metadata.ConfigKey, test.text)
		require.Equal(t, test.expected, *metadata.ConfigKey, test.text)
	}
}

func TestExtractSessionMetadataMisses(t *testing.T) {
	testCases := []string{
		"",
		"<html><body>nothing here</body></html>",
		`organisationUserId: "not-a-number"`,
		`organisationUser = 12`,
		`schoolConfigKey: unquoted`,
		`schoolConfigKey: ""`,
	}

	for _, text := range testCases {
		metadata := ExtractSessionMetadata(text)
		require.Nil(t, metadata.UserId, text)
		require.Nil(t, metadata.ConfigKey, text)
	}
}

func TestExtractFormFieldsLoginPage(t *testing.T) {
	fields := ExtractFormFields(loginPageHtml)

	expected := map[string]string{
		"__EVENTTARGET":        "",
		"__EVENTARGUMENT":      "",
		"__VIEWSTATE":          "dDwtMTA4NzczMzUxNDs7Pg==",
		"__VIEWSTATEGENERATOR": "C2EE9ABB",
		"__EVENTVALIDATION":    "/wEdAAV4aPej",
		"username":             "",
		"password":             "",
		"rememberMeChk":        "on",
		"button1":              "Sign in",
	}
	if diff := cmp.Diff(expected, fields); diff != "" {
		t.Fatalf("form fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFormFields(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected map[string]string
	}{
		{
			name:     "no form",
			html:     "<div>No form here</div>",
			expected: map[string]string{},
		},
		{
			name:     "empty document",
			html:     "",
			expected: map[string]string{},
		},
		{
			name: "checkboxes",
			html: `<form>
				<input type="checkbox" name="rememberMe" value="on" />
				<input type="text" name="username" value="test" />
			</form>`,
			expected: map[string]string{
				"rememberMe": "on",
				"username":   "test",
			},
		},
		{
			name: "missing value and unnamed inputs",
			html: `<form>
				<input name="token">
				<input value="orphan">
				<input name="" value="blank">
			</form>`,
			expected: map[string]string{
				"token": "",
			},
		},
		{
			name: "repeated names keep the last value",
			html: `<input name="a" value="1"><input name="a" value="2">`,
			expected: map[string]string{
				"a": "2",
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ExtractFormFields(test.html))
		})
	}
}
