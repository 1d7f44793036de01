// Package job runs Google Calendar syncs one at a time, either on demand
// or on a cron schedule.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spf13/afero"

	"schtocal/internal/config"
	"schtocal/internal/courses"
	"schtocal/internal/gcal"
	appLog "schtocal/internal/log"
	"schtocal/internal/model"
)

// ErrBusy is returned when a sync is already running.
var ErrBusy = errors.New("job: sync already in progress")

// RemoteFactory builds a Remote for one access token.
type RemoteFactory func(ctx context.Context, token string) (gcal.Remote, error)

// GoogleFactory returns a RemoteFactory backed by the real API.
func GoogleFactory(opts gcal.GoogleOptions) RemoteFactory {
	return func(ctx context.Context, token string) (gcal.Remote, error) {
		return gcal.NewGoogleRemote(ctx, token, opts)
	}
}

// Runner owns the single-flight guard around gcal.Syncer.
type Runner struct {
	cfg       *config.Config
	newRemote RemoteFactory

	// Retry and Shuffle are passed to every Syncer; zero values use the
	// syncer defaults.
	Retry   gcal.RetryPolicy
	Shuffle func(n int, swap func(i, j int))

	running atomic.Bool
}

func NewRunner(cfg *config.Config, f RemoteFactory) *Runner {
	return &Runner{cfg: cfg, newRemote: f}
}

// Busy reports whether a sync is in progress.
func (r *Runner) Busy() bool {
	return r.running.Load()
}

// Sync publishes courses for the semester described by opts. When no
// calendar id is configured, the per-semester calendar is found or created
// first.
func (r *Runner) Sync(ctx context.Context, token string, list []model.Course, opts model.SemesterOptions) (gcal.Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return gcal.Result{}, ErrBusy
	}
	defer r.running.Store(false)

	remote, err := r.newRemote(ctx, token)
	if err != nil {
		return gcal.Result{}, err
	}
	syncer := gcal.NewSyncer(remote)
	if r.Retry.Attempts > 0 {
		syncer.Retry = r.Retry
	}
	syncer.Shuffle = r.Shuffle

	calID := r.cfg.Google.CalendarID
	if calID == "" {
		calID, err = syncer.EnsureCalendar(ctx, gcal.CalendarLabel(opts.Start, opts.End))
		if err != nil {
			return gcal.Result{}, fmt.Errorf("ensure calendar: %w", err)
		}
	}

	return syncer.Sync(ctx, gcal.SyncRequest{
		CalendarID:     calID,
		Courses:        list,
		Options:        opts,
		ColorOverrides: r.cfg.Google.Colors,
	})
}

// SyncConfigured syncs the configured courses file for the configured
// semester, with the token from the configured environment variable.
func (r *Runner) SyncConfigured(ctx context.Context, fsys afero.Fs) (gcal.Result, error) {
	opts, err := r.cfg.SemesterOptions()
	if err != nil {
		return gcal.Result{}, err
	}
	f, err := courses.Load(fsys, r.cfg.CoursesFile)
	if err != nil {
		return gcal.Result{}, err
	}
	res, err := r.Sync(ctx, r.cfg.Token(), f.Courses, opts)
	if err != nil {
		appLog.Error("scheduled sync failed", err, "courses_file", r.cfg.CoursesFile)
		return res, err
	}
	return res, nil
}
