package gcal

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/api/calendar/v3"

	"schtocal/internal/ics"
	appLog "schtocal/internal/log"
	"schtocal/internal/model"
	"schtocal/internal/series"
)

const (
	TagAppKey       = "schmakerApp"
	TagAppValue     = "schmaker"
	TagSemesterKey  = "schmakerSemester"
	TagVersionKey   = "schmakerVersion"
	TagVersionValue = "1"

	// TimeZone is sent with every start/end date-time.
	TimeZone = "Asia/Riyadh"

	dateTimeLayout = "2006-01-02T15:04:05"
)

// RetryPolicy bounds retries of rate-limited or failed-server calls. The
// n-th retry waits n*Base.
type RetryPolicy struct {
	Attempts uint
	Base     time.Duration
}

// DefaultRetry makes one call plus three retries at 500ms, 1s and 1.5s.
var DefaultRetry = RetryPolicy{Attempts: 4, Base: 500 * time.Millisecond}

// SyncRequest describes one semester to publish.
type SyncRequest struct {
	CalendarID string
	Courses    []model.Course
	Options    model.SemesterOptions
	// ColorOverrides maps a color group to a palette id.
	ColorOverrides map[string]string
}

// Result reports what a sync changed.
type Result struct {
	CalendarID string `json:"calendar_id"`
	Deleted    int    `json:"deleted"`
	Inserted   int    `json:"inserted"`
}

// Syncer replaces a semester's previously published events with the
// current ones. Requests are issued one at a time. Callers must not run
// two syncs for the same calendar concurrently.
type Syncer struct {
	Remote Remote
	Retry  RetryPolicy
	// Shuffle permutes the color palette; nil uses math/rand.
	Shuffle func(n int, swap func(i, j int))
}

// NewSyncer returns a Syncer with the default retry policy.
func NewSyncer(r Remote) *Syncer {
	return &Syncer{Remote: r, Retry: DefaultRetry}
}

// Sync deletes every event tagged for the semester, then inserts one
// recurring event per series. A failed insert is not rolled back; the next
// successful sync repairs the calendar.
func (s *Syncer) Sync(ctx context.Context, req SyncRequest) (Result, error) {
	res := Result{CalendarID: req.CalendarID}
	opts := req.Options
	tag := model.SemesterTag(opts.Start, opts.End)

	deleted, err := s.deleteTagged(ctx, req.CalendarID, tag)
	if err != nil {
		return res, err
	}
	res.Deleted = deleted

	built := series.Build(req.Courses, opts)
	colors := assignColors(built, req.ColorOverrides, s.Shuffle)
	until := ics.UntilStamp(opts.End)

	for _, rs := range built {
		ev, err := eventFor(rs, opts.Start, until, tag, colors[rs.ColorGroup])
		if err != nil {
			return res, err
		}
		_, err = retry.DoWithData(func() (*calendar.Event, error) {
			return s.Remote.InsertEvent(ctx, req.CalendarID, ev)
		}, s.retryOptions(ctx, "insert")...)
		if err != nil {
			return res, err
		}
		res.Inserted++
	}

	appLog.Info("gcal sync completed",
		"calendar", req.CalendarID,
		"semester", tag,
		"deleted", res.Deleted,
		"inserted", res.Inserted,
	)
	return res, nil
}

func (s *Syncer) deleteTagged(ctx context.Context, calendarID, tag string) (int, error) {
	filters := []string{
		TagAppKey + "=" + TagAppValue,
		TagSemesterKey + "=" + tag,
	}
	events, err := retry.DoWithData(func() ([]*calendar.Event, error) {
		return s.Remote.ListTaggedEvents(ctx, calendarID, filters)
	}, s.retryOptions(ctx, "list")...)
	if err != nil {
		return 0, err
	}

	for _, ev := range events {
		if ev.Id == "" {
			continue
		}
		err := retry.Do(func() error {
			err := s.Remote.DeleteEvent(ctx, calendarID, ev.Id)
			if isNotFound(err) {
				return nil
			}
			return err
		}, s.retryOptions(ctx, "delete")...)
		if err != nil {
			return 0, err
		}
	}
	return len(events), nil
}

// EnsureCalendar returns the id of the owned calendar named label,
// creating it when missing.
func (s *Syncer) EnsureCalendar(ctx context.Context, label string) (string, error) {
	cals, err := retry.DoWithData(func() ([]*calendar.CalendarListEntry, error) {
		return s.Remote.ListOwnedCalendars(ctx)
	}, s.retryOptions(ctx, "list calendars")...)
	if err != nil {
		return "", err
	}
	for _, c := range cals {
		if c.Summary == label && c.Id != "" {
			return c.Id, nil
		}
	}

	created, err := retry.DoWithData(func() (*calendar.Calendar, error) {
		return s.Remote.CreateCalendar(ctx, &calendar.Calendar{Summary: label, TimeZone: TimeZone})
	}, s.retryOptions(ctx, "create calendar")...)
	if err != nil {
		return "", err
	}
	appLog.Info("gcal calendar created", "id", created.Id, "summary", label)
	return created.Id, nil
}

// CalendarLabel names the per-semester calendar.
func CalendarLabel(start, end time.Time) string {
	return fmt.Sprintf("SchToCal - %s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func (s *Syncer) retryOptions(ctx context.Context, op string) []retry.Option {
	p := s.Retry
	if p.Attempts == 0 {
		p = DefaultRetry
	}
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * p.Base
		}),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			appLog.Warn("gcal retrying", "op", op, "attempt", n+1, "err", err.Error())
		}),
	}
}

func eventFor(rs model.RecurringSeries, semesterStart, until time.Time, tag, colorID string) (*calendar.Event, error) {
	if !ics.ValidWeekday(rs.Weekday) {
		return nil, fmt.Errorf("%w: series %s has weekday %d", ics.ErrInvalidWeekday, rs.ID, rs.Weekday)
	}
	anchor := ics.FirstOccurrence(semesterStart, rs.Weekday)

	transparency := string(rs.Transparency)
	if transparency == "" {
		transparency = string(model.Opaque)
	}

	return &calendar.Event{
		Summary:     rs.Summary,
		Location:    rs.Location,
		Description: rs.Description,
		Start: &calendar.EventDateTime{
			DateTime: ics.LocalDateTime(anchor, rs.Start).Format(dateTimeLayout),
			TimeZone: TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: ics.LocalDateTime(anchor, rs.End).Format(dateTimeLayout),
			TimeZone: TimeZone,
		},
		Recurrence:   []string{"RRULE:" + ics.WeeklyRule(rs.Weekday, until)},
		Transparency: transparency,
		ColorId:      colorID,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TagAppKey:      TagAppValue,
				TagSemesterKey: tag,
				TagVersionKey:  TagVersionValue,
			},
		},
	}, nil
}
