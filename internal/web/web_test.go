package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamerhub/internal/factory"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/testutil"
	"github.com/mcoot/gamerhub/internal/testutil/fakeapi"
	"github.com/mcoot/gamerhub/internal/web"
	"github.com/mcoot/gamerhub/internal/web/middleware"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	api     *fakeapi.Server
	cookies *cookieJar

	// Seeded accounts and profiles
	user  model.User
	admin model.User
	kid   model.Profile
	adult model.Profile
}

// newWebTestServer creates a new test server against a seeded fake API
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	api := fakeapi.New(t)
	app := factory.NewTestApp(api.URL())
	t.Cleanup(func() { _ = app.Close() })

	router := web.NewRouter(web.RouterConfig{
		Logger:    testutil.NopLogger(),
		Registry:  app.Registry,
		Validator: app.Validator,
		Cookie:    middleware.CookieConfig{MaxAge: time.Hour},
	})

	ts := &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		api:     api,
		cookies: newCookieJar(),
	}

	ts.user = api.AddUser("Ana", "ana@example.com", "secret1", model.RoleUser)
	ts.admin = api.AddUser("Root", "root@example.com", "secret1", model.RoleAdmin)
	ts.kid = api.AddProfile(ts.user.ID, "Kiddo", model.RestrictionKids)
	ts.adult = api.AddProfile(ts.user.ID, "Parent", model.RestrictionAdults)
	api.AddGames(fakeapi.Games("e", 3, "E")...)
	api.AddGames(fakeapi.Games("m", 2, "M")...)
	return ts
}

// newRequest builds a request carrying the jar's cookies
func (ts *webTestServer) newRequest(method, path string, form url.Values, htmx bool) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)
	return req
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := ts.newRequest(method, path, form, htmx)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// requestAsync serves a request in the background. Used where a handler
// blocks until the test advances the clock.
func (ts *webTestServer) requestAsync(method, path string, htmx bool) <-chan *httptest.ResponseRecorder {
	req := ts.newRequest(method, path, nil, htmx)
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rr := httptest.NewRecorder()
		ts.handler.ServeHTTP(rr, req)
		ts.cookies.extract(rr)
		done <- rr
	}()
	return done
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, false)
}

// post makes a POST request with form data (non-HTMX)
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, false)
}

// postHTMX makes a POST request with form data as an HTMX request
func (ts *webTestServer) postHTMX(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, true)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// set stores a cookie as if the server had issued it
func (j *cookieJar) set(name, value string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies[name] = &http.Cookie{Name: name, Value: value}
}

// session returns the browser session id, if one was issued
func (j *cookieJar) session() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c, ok := j.cookies[middleware.SessionCookieName]; ok {
		return c.Value
	}
	return ""
}

// Helper functions for common test operations

// login logs in through the form and expects to land on the profiles page
func (ts *webTestServer) login(email, password string) {
	ts.t.Helper()
	form := url.Values{"email": {email}, "password": {password}}
	rr := ts.post("/login", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after login")
	require.Equal(ts.t, "/profiles", rr.Header().Get("Location"))
}

// selectProfile makes a profile active
func (ts *webTestServer) selectProfile(p model.Profile) {
	ts.t.Helper()
	rr := ts.post("/profiles/"+p.ID.String()+"/select", nil)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after selecting a profile")
	require.Equal(ts.t, "/catalog", rr.Header().Get("Location"))
}

// browseAs logs in as the seeded user and selects p
func (ts *webTestServer) browseAs(p model.Profile) {
	ts.t.Helper()
	ts.login("ana@example.com", "secret1")
	ts.selectProfile(p)
}

// followRedirect follows a redirect and returns the response
// Works with both traditional Location headers and HTMX HX-Redirect headers
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	// Check for HTMX redirect first
	location := rr.Header().Get("HX-Redirect")
	if location == "" {
		// Fall back to traditional redirect
		location = rr.Header().Get("Location")
	}
	require.NotEmpty(ts.t, location, "Expected Location or HX-Redirect header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

// ids collects the data-id attributes of the elements matching selector
func ids(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.AttrOr("data-id", ""))
	})
	return out
}
