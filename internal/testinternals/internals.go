// Package testinternals holds the pieces handler tests share: a cookie session store, the page
// renderer and a way to carry cookies between requests the way a browser does.
package testinternals

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/internal/telemetry/metrics"
	"github.com/caminemosjuntos/counseling/internal/web"

	"github.com/stretchr/testify/require"
)

const SiteName = "Caminemos Juntos Counseling"

var testHashKey = []byte("testinternals-hash-key-32-bytes!")

type Internals struct {
	Sessions       *auth.SessionStore
	Renderer       *web.Renderer
	MetricsManager *metrics.Manager
}

func NewTestingInternals(t *testing.T) *Internals {
	t.Helper()

	sessions := auth.NewSessionStore(testHashKey, 30*time.Minute, false)
	renderer, err := web.NewRenderer(sessions, SiteName)
	require.NoError(t, err)

	return &Internals{
		Sessions:       sessions,
		Renderer:       renderer,
		MetricsManager: metrics.NewTestManager(),
	}
}

// Flashes pops the flash messages a previous response left in the session cookie
func (i *Internals) Flashes(rr *httptest.ResponseRecorder) []string {
	return i.Sessions.Flashes(httptest.NewRecorder(), NextRequest("GET", "/", nil, rr))
}

// Token returns the login token a previous response stored in the session cookie
func (i *Internals) Token(rr *httptest.ResponseRecorder) string {
	return i.Sessions.Token(NextRequest("GET", "/", nil, rr))
}

// LoggedInRequest builds a request carrying a session cookie with the given token
func (i *Internals) LoggedInRequest(t *testing.T, method, target string, form url.Values, token string) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, i.Sessions.SetToken(rr, httptest.NewRequest("GET", "/", nil), token))
	return NextRequest(method, target, form, rr)
}

// NextRequest builds a new request carrying the cookies set in rr (when not nil);
// when a cookie was set more than once, the last one wins.
// A non nil form makes it a urlencoded form post.
func NextRequest(method, target string, form url.Values, rr *httptest.ResponseRecorder) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if rr == nil {
		return req
	}

	last := map[string]*http.Cookie{}
	var names []string
	for _, c := range rr.Result().Cookies() {
		if _, seen := last[c.Name]; !seen {
			names = append(names, c.Name)
		}
		last[c.Name] = c
	}
	for _, name := range names {
		req.AddCookie(&http.Cookie{Name: name, Value: last[name].Value})
	}

	return req
}

// WithIdentity puts the given user on the request, as the current user middleware would
func WithIdentity(r *http.Request, identity *auth.Identity) *http.Request {
	return r.WithContext(auth.ContextWithIdentity(r.Context(), identity))
}

func AdminIdentity() *auth.Identity {
	return &auth.Identity{ID: 1, Name: "Admin", Email: "admin@example.com", Admin: true}
}

func UserIdentity() *auth.Identity {
	return &auth.Identity{ID: 2, Name: "Ana", Email: "ana@example.com"}
}
