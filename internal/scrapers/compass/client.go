// client.go contains the logic for talking to a compass portal over http,
// it knows nothing about how the events are used afterwards.

package compass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"bellweaver-backend/internal/components/assert"
	"bellweaver-backend/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_new           = "client.new"
	report_client_login         = "client.login"
	report_client_bootstrap     = "client.bootstrap-session"
	report_client_events        = "client.calendar-events"
	report_client_user_details  = "client.user-details"
	report_client_decode_events = "client.decode-events"
)

const (
	loginPath        = "/login.aspx"
	homePath         = "/home.aspx"
	calendarPath     = "/Services/Calendar.svc/GetCalendarEventsByUser"
	userDetailsPath  = "/Services/User.svc/GetUserDetailsBlobByUserId"
	requestTimeout   = 10 * time.Second
	maxRedirects     = 10
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	acceptLanguage   = "en-AU,en;q=0.9"
	requestsPerSec   = 2
	requestsBurstMax = 2
)

type ClientOptions struct {
	// BaseUrl is the root of the portal, ex. https://school.compass.education
	BaseUrl  string
	Username string
	Password string
	// CloudflareBypass wraps the transport so requests look like they come
	// from a browser, some schools put their portal behind cloudflare.
	CloudflareBypass bool
	// RedirectHosts are hosts besides the portal's own that redirects may
	// lead to, ex. a single sign-on landing page.
	RedirectHosts []string
}

// Client is a session against a real compass portal. All requests made by a
// client share one cookie jar, so the cookies issued during Login are sent
// with every later request. A Client is not safe for concurrent use.
type Client struct {
	http     *resty.Client
	tel      telemetry.API
	password string
	session  Session
}

func trimBaseUrl(baseUrl string) string {
	return strings.TrimRight(strings.TrimSpace(baseUrl), "/")
}

func normalizeBaseUrl(baseUrl string) (string, *url.URL, error) {
	baseUrl = trimBaseUrl(baseUrl)
	parsed, err := url.Parse(baseUrl)
	if err != nil {
		return "", nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", nil, fmt.Errorf("base url %q must be absolute", baseUrl)
	}
	return baseUrl, parsed, nil
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("compass_scraper", tel)

	baseUrl, parsedBaseUrl, err := normalizeBaseUrl(opts.BaseUrl)
	if err != nil {
		tel.ReportBroken(report_client_new, err)
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("User-Agent", userAgent)
	httpClient.SetHeader("Accept-Language", acceptLanguage)
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(maxRedirects),
		resty.DomainCheckRedirectPolicy(append([]string{parsedBaseUrl.Hostname()}, opts.RedirectHosts...)...),
	)
	httpClient.SetTimeout(requestTimeout)

	rateLimiter := rate.NewLimiter(requestsPerSec, requestsBurstMax)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel, "scrapers/compass/http")

	return &Client{
		http:     httpClient,
		tel:      tel,
		password: opts.Password,
		session: Session{
			BaseUrl:  baseUrl,
			Username: opts.Username,
		},
	}, nil
}

func (c *Client) Session() Session {
	return c.session.clone()
}

// applyMetadata records whatever session metadata can be found in `text`,
// values that are already known are never overwritten.
func (c *Client) applyMetadata(text string) {
	metadata := ExtractSessionMetadata(text)
	if c.session.UserId == nil && metadata.UserId != nil {
		c.session.UserId = metadata.UserId
		c.tel.ReportDebug("extracted user id", *metadata.UserId)
	}
	if c.session.ConfigKey == nil && metadata.ConfigKey != nil {
		c.session.ConfigKey = metadata.ConfigKey
		c.tel.ReportDebug("extracted school config key")
	}
}

func (c *Client) Login(ctx context.Context) error {
	loginError := func(err error) error {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("sessionstate", "disabled").
		Get(loginPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login page request: %w", err),
		)
		return loginError(err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("login page: unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_login, err)
		return loginError(err)
	}

	form := ExtractFormFields(res.String())
	form["username"] = c.session.Username
	form["password"] = c.password

	res, err = c.http.R().
		SetContext(ctx).
		SetQueryParam("sessionstate", "disabled").
		SetFormData(form).
		Post(loginPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login request: %w", err),
		)
		return loginError(err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("unexpected status %s", res.Status())
		c.tel.ReportWarning(report_client_login, err, c.session.Username)
		return loginError(err)
	}

	c.applyMetadata(res.String())
	c.session.Authenticated = true
	return nil
}

// ensureSessionMetadata makes sure the user id is known, fetching the home page
// if the login response did not contain it.
func (c *Client) ensureSessionMetadata(ctx context.Context) error {
	if c.session.UserId != nil {
		return nil
	}

	c.tel.ReportDebug("user id missing after login, fetching home page")

	res, err := c.http.R().
		SetContext(ctx).
		Get(homePath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_bootstrap,
			fmt.Errorf("fetch home page: %w", err),
		)
		return fmt.Errorf("%w: fetch home page: %w", ErrMetadataExtraction, err)
	}
	c.applyMetadata(res.String())

	if c.session.UserId == nil {
		err := fmt.Errorf("%w: organisation user id not found", ErrMetadataExtraction)
		c.tel.ReportBroken(report_client_bootstrap, err, res.Status())
		return err
	}
	return nil
}

// preflight checks everything an authenticated request depends on, it makes
// no request when the session is not authenticated.
func (c *Client) preflight(ctx context.Context) error {
	if !c.session.Authenticated {
		return ErrNotAuthenticated
	}
	return c.ensureSessionMetadata(ctx)
}

type calendarEventsRequest struct {
	UserId     int64   `json:"userId"`
	HomePage   bool    `json:"homePage"`
	ActivityId *int64  `json:"activityId"`
	LocationId *int64  `json:"locationId"`
	StaffIds   []int64 `json:"staffIds"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Page       int     `json:"page"`
	Start      int     `json:"start"`
	Limit      int     `json:"limit"`
}

type userDetailsRequest struct {
	UserId       int64 `json:"userId"`
	TargetUserId int64 `json:"targetUserId"`
}

// postService posts a json body to one of the portal's *.svc endpoints and
// returns the raw response body.
func (c *Client) postService(ctx context.Context, reportId, path string, query map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("json marshal: %w", err))
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetBody(payload).
		Post(path)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err))
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("%w: unexpected status %s", ErrTransport, res.Status())
		c.tel.ReportBroken(reportId, err)
		return nil, err
	}
	return res.Body(), nil
}

func (c *Client) CalendarEvents(ctx context.Context, startDate, endDate string, limit int) ([]Event, error) {
	if !c.session.Authenticated {
		return nil, ErrNotAuthenticated
	}
	_, _, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	err = c.preflight(ctx)
	if err != nil {
		return nil, err
	}

	c.tel.ReportDebug(report_client_events, startDate, endDate, limit)

	body, err := c.postService(
		ctx,
		report_client_events,
		calendarPath,
		map[string]string{
			"sessionstate":         "readonly",
			"ExcludeNonRelevantPd": "true",
		},
		calendarEventsRequest{
			UserId:    *c.session.UserId,
			HomePage:  true,
			StartDate: startDate,
			EndDate:   endDate,
			Page:      1,
			Start:     0,
			Limit:     limit,
		},
	)
	if err != nil {
		return nil, err
	}

	events, err := c.decodeEvents(body)
	if err != nil {
		c.tel.ReportBroken(report_client_events, err)
		return nil, err
	}
	c.tel.ReportCount(report_client_events, int64(len(events)))
	return events, nil
}

func (c *Client) UserDetails(ctx context.Context) (UserDetails, error) {
	err := c.preflight(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.postService(
		ctx,
		report_client_user_details,
		userDetailsPath,
		map[string]string{"sessionstate": "readonly"},
		userDetailsRequest{
			UserId:       *c.session.UserId,
			TargetUserId: *c.session.UserId,
		},
	)
	if err != nil {
		return nil, err
	}

	payload, err := unwrapEnvelope(body)
	if err != nil {
		c.tel.ReportBroken(report_client_user_details, err)
		return nil, err
	}
	details, ok := payload.(map[string]any)
	if !ok {
		c.tel.ReportWarning(report_client_user_details, fmt.Errorf("payload is not an object"))
		return UserDetails{}, nil
	}
	return UserDetails(details), nil
}

// Close releases idle connections, the client is unauthenticated afterwards.
func (c *Client) Close() error {
	c.http.GetClient().CloseIdleConnections()
	c.session.Authenticated = false
	return nil
}

// unwrapEnvelope decodes a response body and strips the `d` wrapper ASP.NET
// services put around their results, bodies without it are returned as is.
func unwrapEnvelope(body []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var data any
	err := decoder.Decode(&data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	err = decoder.Decode(&struct{}{})
	if err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after json value", ErrMalformedResponse)
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	inner, ok := obj["d"]
	if !ok {
		return data, nil
	}
	return inner, nil
}

// decodeEvents turns a response body into events. A payload that is not a
// list is treated as no events.
func (c *Client) decodeEvents(body []byte) ([]Event, error) {
	payload, err := unwrapEnvelope(body)
	if err != nil {
		return nil, err
	}

	list, ok := payload.([]any)
	if !ok {
		c.tel.ReportWarning(report_client_decode_events, fmt.Errorf("payload is not a list"))
		return []Event{}, nil
	}

	events := make([]Event, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			c.tel.ReportWarning(report_client_decode_events, fmt.Errorf("item %d is not an object", i))
			continue
		}
		events = append(events, Event(obj))
	}
	return events, nil
}
