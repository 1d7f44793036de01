package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"schtocal/internal/config"
	"schtocal/internal/gcal"
	"schtocal/internal/job"
)

const body = `{
  "student_name": "Sara Ali",
  "courses": [{
    "code": "CS101",
    "name": "Intro",
    "schedule": [{"days": [2, 4], "start_time": "09:00 AM", "end_time": "10:40 AM", "room": "5-2A3"}]
  }]
}`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Semester = config.SemesterConfig{Start: "2026-01-18", End: "2026-08-23"}
	cfg.Google.CalendarID = "primary"
	cfg.Normalize()
	return cfg
}

type stubRemote struct {
	inserted int
	events   []*calendar.Event
	status   int
}

func (s *stubRemote) ListTaggedEvents(context.Context, string, []string) ([]*calendar.Event, error) {
	return nil, nil
}
func (s *stubRemote) DeleteEvent(context.Context, string, string) error { return nil }
func (s *stubRemote) InsertEvent(_ context.Context, _ string, ev *calendar.Event) (*calendar.Event, error) {
	if s.status != 0 {
		return nil, &gcal.APIError{Op: "insert event", Status: s.status, Body: "nope"}
	}
	s.inserted++
	s.events = append(s.events, ev)
	return ev, nil
}
func (s *stubRemote) ListOwnedCalendars(context.Context) ([]*calendar.CalendarListEntry, error) {
	return nil, nil
}
func (s *stubRemote) CreateCalendar(_ context.Context, c *calendar.Calendar) (*calendar.Calendar, error) {
	return c, nil
}

func newServer(cfg *config.Config, remote gcal.Remote) *Server {
	runner := job.NewRunner(cfg, func(_ context.Context, token string) (gcal.Remote, error) {
		if token != "tok" {
			return nil, gcal.ErrNoCredential
		}
		return remote, nil
	})
	runner.Retry = gcal.RetryPolicy{Attempts: 1, Base: time.Millisecond}
	return NewServer(cfg, runner)
}

func do(t *testing.T, h http.Handler, method, path, payload string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(testConfig(), &stubRemote{}).Handler(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestICS(t *testing.T) {
	rec := do(t, newServer(testConfig(), &stubRemote{}).Handler(), http.MethodPost, "/api/ics", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="schedule_Sara_Ali.ics"`)

	doc := rec.Body.String()
	assert.Equal(t, 2, strings.Count(doc, "BEGIN:VEVENT"))
	assert.Contains(t, doc, "BYDAY=MO")
	assert.Contains(t, doc, "BYDAY=WE")
}

func TestICSOptionsOverride(t *testing.T) {
	payload := strings.Replace(body, `"student_name"`,
		`"options": {"commute_inbound_minutes": 30, "language": "en"}, "student_name"`, 1)
	rec := do(t, newServer(testConfig(), &stubRemote{}).Handler(), http.MethodPost, "/api/ics", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := rec.Body.String()
	assert.Equal(t, 4, strings.Count(doc, "BEGIN:VEVENT"))
	assert.Contains(t, doc, "Driving to College")
}

func TestICSRejectsBadInput(t *testing.T) {
	h := newServer(testConfig(), &stubRemote{}).Handler()

	rec := do(t, h, http.MethodPost, "/api/ics", "{", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := strings.Replace(body, `"student_name"`, `"options": {"remap_mode": "weird"}, "student_name"`, 1)
	rec = do(t, h, http.MethodPost, "/api/ics", bad, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, path := range []string{"/api/ics", "/api/preview", "/api/sync"} {
		rec = do(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}

func TestPreview(t *testing.T) {
	rec := do(t, newServer(testConfig(), &stubRemote{}).Handler(), http.MethodPost, "/api/preview", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Series, 2)
	require.Len(t, resp.Occurrences, 2)
	assert.Equal(t, time.Monday, resp.Occurrences[0].Start.Weekday())
	assert.Equal(t, time.Wednesday, resp.Occurrences[1].Start.Weekday())
}

func TestSync(t *testing.T) {
	remote := &stubRemote{}
	h := newServer(testConfig(), remote).Handler()

	rec := do(t, h, http.MethodPost, "/api/sync", body, map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res gcal.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "primary", res.CalendarID)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, remote.inserted)
}

func TestSyncAppliesRequestOptions(t *testing.T) {
	remote := &stubRemote{}
	h := newServer(testConfig(), remote).Handler()
	payload := strings.Replace(body, `"student_name"`,
		`"options": {"semester_start": "2026-02-01", "commute_inbound_minutes": 30}, "student_name"`, 1)

	rec := do(t, h, http.MethodPost, "/api/sync", payload, map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Two classes plus a commute before each of them.
	require.Len(t, remote.events, 4)
	first := remote.events[0]
	assert.Equal(t, "2026-02-02T09:00:00", first.Start.DateTime)
	assert.Equal(t, "2026-02-01_2026-08-23", first.ExtendedProperties.Private[gcal.TagSemesterKey])
	assert.Equal(t, "transparent", remote.events[2].Transparency)
}

func TestSyncRejectsBadOptions(t *testing.T) {
	payload := strings.Replace(body, `"student_name"`, `"options": {"semester_end": "soon"}, "student_name"`, 1)
	rec := do(t, newServer(testConfig(), &stubRemote{}).Handler(), http.MethodPost, "/api/sync", payload,
		map[string]string{"Authorization": "Bearer tok"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncErrors(t *testing.T) {
	rec := do(t, newServer(testConfig(), &stubRemote{}).Handler(), http.MethodPost, "/api/sync", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, newServer(testConfig(), &stubRemote{}).Handler(), http.MethodPost, "/api/sync", body,
		map[string]string{"Authorization": "Bearer other"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, newServer(testConfig(), &stubRemote{status: http.StatusBadRequest}).Handler(), http.MethodPost, "/api/sync", body,
		map[string]string{"Authorization": "Bearer tok"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")

	rec = do(t, NewServer(testConfig(), nil).Handler(), http.MethodPost, "/api/sync", body,
		map[string]string{"Authorization": "Bearer tok"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSyncErrorStatus(t *testing.T) {
	status, _ := syncErrorStatus(job.ErrBusy)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = syncErrorStatus(&gcal.APIError{Status: http.StatusForbidden})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestBasicAuth(t *testing.T) {
	cfg := testConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	h := newServer(cfg, &stubRemote{}).Handler()

	rec := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/ics", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodPost, "/api/ics", strings.NewReader(body))
	req.SetBasicAuth("u", "p")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
