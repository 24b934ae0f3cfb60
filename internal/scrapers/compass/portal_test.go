package compass

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	testSessionCookie = "ASP.NET_SessionId"
	testSessionValue  = "k3bq0yzlpx"
)

// fakePortal is a minimal compass portal, zero status fields mean 200.
type fakePortal struct {
	loginPageStatus int
	loginStatus     int
	// loginLanding is where a successful login redirects to
	loginLanding  string
	homeBody      string
	eventsStatus  int
	eventsBody    string
	detailsBody   string
	requireCookie bool

	hits struct {
		loginPage atomic.Int32
		login     atomic.Int32
		home      atomic.Int32
		landing   atomic.Int32
		events    atomic.Int32
		details   atomic.Int32
	}

	mu            sync.Mutex
	loginForm     map[string]string
	eventsQuery   map[string]string
	eventsRequest map[string]any
	headers       http.Header
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		homeBody:      homePageHtml,
		eventsBody:    `{"d":[{"id":"1","longTitle":"Assembly","start":"2025-01-06T09:00:00"}]}`,
		detailsBody:   `{"d":{"userId":4242,"userFullName":"Pat Parent"}}`,
		requireCookie: true,
	}
}

func (p *fakePortal) start(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login.aspx", p.handleLogin)
	mux.HandleFunc("/home.aspx", func(w http.ResponseWriter, r *http.Request) {
		p.hits.home.Add(1)
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, p.homeBody)
	})
	mux.HandleFunc("/landing.aspx", func(w http.ResponseWriter, r *http.Request) {
		p.hits.landing.Add(1)
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body>Welcome back</body></html>")
	})
	mux.HandleFunc("/Services/Calendar.svc/GetCalendarEventsByUser", p.handleEvents)
	mux.HandleFunc("/Services/User.svc/GetUserDetailsBlobByUserId", p.handleDetails)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func (p *fakePortal) handleLogin(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.headers = r.Header.Clone()
	p.mu.Unlock()

	if r.Method == http.MethodGet {
		p.hits.loginPage.Add(1)
		if p.loginPageStatus != 0 {
			w.WriteHeader(p.loginPageStatus)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, loginPageHtml)
		return
	}

	p.hits.login.Add(1)
	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	form := map[string]string{}
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}
	p.mu.Lock()
	p.loginForm = form
	p.mu.Unlock()

	if p.loginStatus != 0 {
		w.WriteHeader(p.loginStatus)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:  testSessionCookie,
		Value: testSessionValue,
		Path:  "/",
	})
	landing := p.loginLanding
	if landing == "" {
		landing = "/home.aspx"
	}
	http.Redirect(w, r, landing, http.StatusFound)
}

func (p *fakePortal) lastLoginForm() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loginForm
}

func (p *fakePortal) lastEventsRequest() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eventsRequest
}

func (p *fakePortal) lastEventsQuery() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eventsQuery
}

func (p *fakePortal) lastHeaders() http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers
}

func (p *fakePortal) authorized(r *http.Request) bool {
	if !p.requireCookie {
		return true
	}
	cookie, err := r.Cookie(testSessionCookie)
	return err == nil && cookie.Value == testSessionValue
}

func (p *fakePortal) handleEvents(w http.ResponseWriter, r *http.Request) {
	p.hits.events.Add(1)
	if !p.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var body map[string]any
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	query := map[string]string{}
	for key := range r.URL.Query() {
		query[key] = r.URL.Query().Get(key)
	}
	p.mu.Lock()
	p.eventsRequest = body
	p.eventsQuery = query
	p.headers = r.Header.Clone()
	p.mu.Unlock()

	if p.eventsStatus != 0 {
		w.WriteHeader(p.eventsStatus)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, p.eventsBody)
}

func (p *fakePortal) handleDetails(w http.ResponseWriter, r *http.Request) {
	p.hits.details.Add(1)
	if !p.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, p.detailsBody)
}
