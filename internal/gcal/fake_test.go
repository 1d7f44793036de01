package gcal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/calendar/v3"
)

// fakeRemote is an in-memory calendar. fail queues errors per operation
// name; each call pops one before doing any work.
type fakeRemote struct {
	events    map[string]*calendar.Event
	order     []string
	calendars []*calendar.CalendarListEntry
	nextID    int

	fail  map[string][]error
	calls map[string]int
	log   []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		events: make(map[string]*calendar.Event),
		fail:   make(map[string][]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeRemote) failWith(op string, errs ...error) {
	f.fail[op] = append(f.fail[op], errs...)
}

func (f *fakeRemote) take(op string) error {
	f.calls[op]++
	f.log = append(f.log, op)
	q := f.fail[op]
	if len(q) == 0 {
		return nil
	}
	f.fail[op] = q[1:]
	return q[0]
}

func status(code int) error {
	return &APIError{Op: "fake", Status: code, Body: http.StatusText(code)}
}

func (f *fakeRemote) ListTaggedEvents(_ context.Context, _ string, filters []string) ([]*calendar.Event, error) {
	if err := f.take("list"); err != nil {
		return nil, err
	}
	var out []*calendar.Event
	for _, id := range f.order {
		ev, ok := f.events[id]
		if ok && matches(ev, filters) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func matches(ev *calendar.Event, filters []string) bool {
	if ev.ExtendedProperties == nil {
		return false
	}
	for _, f := range filters {
		k, v, _ := strings.Cut(f, "=")
		if ev.ExtendedProperties.Private[k] != v {
			return false
		}
	}
	return true
}

func (f *fakeRemote) DeleteEvent(_ context.Context, _ string, id string) error {
	if err := f.take("delete"); err != nil {
		return err
	}
	if _, ok := f.events[id]; !ok {
		return status(http.StatusNotFound)
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRemote) InsertEvent(_ context.Context, _ string, ev *calendar.Event) (*calendar.Event, error) {
	if err := f.take("insert"); err != nil {
		return nil, err
	}
	f.nextID++
	cp := *ev
	cp.Id = fmt.Sprintf("ev%d", f.nextID)
	f.events[cp.Id] = &cp
	f.order = append(f.order, cp.Id)
	return &cp, nil
}

func (f *fakeRemote) ListOwnedCalendars(context.Context) ([]*calendar.CalendarListEntry, error) {
	if err := f.take("list calendars"); err != nil {
		return nil, err
	}
	return f.calendars, nil
}

func (f *fakeRemote) CreateCalendar(_ context.Context, cal *calendar.Calendar) (*calendar.Calendar, error) {
	if err := f.take("create calendar"); err != nil {
		return nil, err
	}
	id := fmt.Sprintf("cal%d", len(f.calendars)+1)
	f.calendars = append(f.calendars, &calendar.CalendarListEntry{Id: id, Summary: cal.Summary, TimeZone: cal.TimeZone})
	return &calendar.Calendar{Id: id, Summary: cal.Summary, TimeZone: cal.TimeZone}, nil
}

func (f *fakeRemote) live() []*calendar.Event {
	var out []*calendar.Event
	for _, id := range f.order {
		if ev, ok := f.events[id]; ok {
			out = append(out, ev)
		}
	}
	return out
}
