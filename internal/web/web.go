package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"schtocal/internal/config"
	"schtocal/internal/gcal"
	"schtocal/internal/i18n"
	"schtocal/internal/ics"
	"schtocal/internal/job"
	appLog "schtocal/internal/log"
	"schtocal/internal/model"
	"schtocal/internal/remap"
	"schtocal/internal/series"
)

const maxBodyBytes = 1 << 20

// Server exposes ICS generation, preview and Google sync over HTTP.
type Server struct {
	cfg     *config.Config
	runner  *job.Runner
	encoder *ics.Encoder
	router  *mux.Router
}

// NewServer constructs a new Server. runner may be nil, in which case
// /api/sync answers 503.
func NewServer(cfg *config.Config, runner *job.Runner) *Server {
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		encoder: ics.NewEncoder(),
		router:  mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/api/ics", s.protect(s.handleICS)).Methods(http.MethodPost)
	s.router.Handle("/api/preview", s.protect(s.handlePreview)).Methods(http.MethodPost)
	s.router.Handle("/api/sync", s.protect(s.handleSync)).Methods(http.MethodPost)

	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
	}
	s.router.Use(logRequests)
}

// protect wraps an /api handler with basic auth when it is configured.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	if !s.basicAuthEnabled() {
		return h
	}
	return s.basicAuthMiddleware(h)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware guards the /api routes. /health is never wrapped.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="SchToCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		appLog.Debug("http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start).String())
	})
}

// StartServer serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, runner *job.Runner) error {
	s := NewServer(cfg, runner)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requestOptions overrides the configured semester settings for one
// request. Unset fields keep the configured value.
type requestOptions struct {
	SemesterStart   *string           `json:"semester_start,omitempty"`
	SemesterEnd     *string           `json:"semester_end,omitempty"`
	CommuteInbound  *int              `json:"commute_inbound_minutes,omitempty"`
	CommuteOutbound *int              `json:"commute_outbound_minutes,omitempty"`
	RemapMode       *string           `json:"remap_mode,omitempty"`
	Language        *string           `json:"language,omitempty"`
	CourseGlyphs    map[string]string `json:"course_glyphs,omitempty"`
	CommuteGlyph    *string           `json:"commute_glyph,omitempty"`
}

// scheduleRequest is the body of /api/ics, /api/preview and /api/sync.
type scheduleRequest struct {
	StudentName string          `json:"student_name"`
	Courses     []model.Course  `json:"courses"`
	Options     *requestOptions `json:"options,omitempty"`
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (scheduleRequest, bool) {
	var req scheduleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return req, false
	}
	return req, true
}

// semesterOptions resolves the configured options with o applied.
func (s *Server) semesterOptions(o *requestOptions) (model.SemesterOptions, error) {
	cfg := *s.cfg
	if o != nil {
		if o.SemesterStart != nil {
			cfg.Semester.Start = *o.SemesterStart
		}
		if o.SemesterEnd != nil {
			cfg.Semester.End = *o.SemesterEnd
		}
		if o.CommuteInbound != nil {
			cfg.Commute.InboundMinutes = *o.CommuteInbound
		}
		if o.CommuteOutbound != nil {
			cfg.Commute.OutboundMinutes = *o.CommuteOutbound
		}
		if o.CommuteGlyph != nil {
			cfg.Commute.Glyph = *o.CommuteGlyph
		}
		if o.RemapMode != nil {
			if _, ok := remap.ParseMode(*o.RemapMode); !ok {
				return model.SemesterOptions{}, errors.New("unknown remap_mode " + *o.RemapMode)
			}
			cfg.RemapMode = *o.RemapMode
		}
		if o.Language != nil {
			cfg.Language = string(i18n.Parse(*o.Language))
		}
		if o.CourseGlyphs != nil {
			cfg.CourseGlyphs = o.CourseGlyphs
		}
	}
	return cfg.SemesterOptions()
}

// handleICS returns the generated calendar as a download.
//
// POST /api/ics {"student_name": "...", "courses": [...], "options": {...}}
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	opts, err := s.semesterOptions(req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	built := series.Build(req.Courses, opts)
	doc, err := s.encoder.Encode(built, opts.Start, opts.End)
	if err != nil {
		appLog.Error("api ics: encode failed", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appLog.Info("api ics generated",
		"courses", len(req.Courses),
		"series", len(built),
		"semester", model.SemesterTag(opts.Start, opts.End),
	)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ics.Filename(req.StudentName)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// previewResponse is the JSON response shape for /api/preview.
type previewResponse struct {
	Series      []model.RecurringSeries `json:"series"`
	Occurrences []model.Occurrence      `json:"occurrences"`
	RangeStart  time.Time               `json:"range_start"`
	RangeEnd    time.Time               `json:"range_end"`
}

// handlePreview renders the first semester week by encoding, parsing and
// expanding the document the /api/ics endpoint would return.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	opts, err := s.semesterOptions(req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	built := series.Build(req.Courses, opts)
	doc, err := s.encoder.Encode(built, opts.Start, opts.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.encoder.ParseICS([]byte(doc))
	if err != nil {
		appLog.Error("api preview: parse failed", err)
		writeError(w, http.StatusInternalServerError, "failed to parse generated calendar")
		return
	}

	rangeStart := opts.Start.Add(-s.encoder.Offset)
	rangeEnd := rangeStart.AddDate(0, 0, 7)
	res, err := ics.ExpandOccurrences(events, ics.ExpandConfig{
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to expand events")
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Series:      built,
		Occurrences: res.Occurrences,
		RangeStart:  rangeStart,
		RangeEnd:    rangeEnd,
	})
}

// handleSync publishes the courses to Google Calendar using the same
// options as /api/ics and /api/preview. The access token is taken from the
// Authorization header.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "sync is not configured")
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	opts, err := s.semesterOptions(req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.runner.Sync(r.Context(), token, req.Courses, opts)
	if err != nil {
		status, msg := syncErrorStatus(err)
		appLog.Error("api sync failed", err, "status", status)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func syncErrorStatus(err error) (int, string) {
	var aerr *gcal.APIError
	switch {
	case errors.Is(err, job.ErrBusy):
		return http.StatusConflict, err.Error()
	case errors.Is(err, gcal.ErrNoCredential):
		return http.StatusUnauthorized, err.Error()
	case errors.As(err, &aerr):
		if aerr.Status == http.StatusUnauthorized || aerr.Status == http.StatusForbidden {
			return aerr.Status, aerr.Error()
		}
		return http.StatusBadGateway, aerr.Error()
	case errors.Is(err, ics.ErrInvalidWeekday):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
