package gcal

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const listPageSize = 250

// Remote is the subset of the Google Calendar API used by Syncer.
type Remote interface {
	ListTaggedEvents(ctx context.Context, calendarID string, filters []string) ([]*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error)
	ListOwnedCalendars(ctx context.Context) ([]*calendar.CalendarListEntry, error)
	CreateCalendar(ctx context.Context, cal *calendar.Calendar) (*calendar.Calendar, error)
}

// GoogleOptions overrides the transport, mainly for tests.
type GoogleOptions struct {
	// Endpoint replaces the API base URL when set.
	Endpoint string
	// HTTPClient is the base client wrapped with the bearer token.
	HTTPClient *http.Client
}

// GoogleRemote talks to Google Calendar with a caller-supplied access token.
type GoogleRemote struct {
	svc *calendar.Service
}

// NewGoogleRemote builds a calendar service for token. An empty token
// yields ErrNoCredential without touching the network.
func NewGoogleRemote(ctx context.Context, token string, opts GoogleOptions) (*GoogleRemote, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoCredential
	}

	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	clientOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, wrapError("init", err)
	}
	return &GoogleRemote{svc: svc}, nil
}

// ListTaggedEvents returns every non-deleted event carrying all the given
// private extended properties ("key=value").
func (g *GoogleRemote) ListTaggedEvents(ctx context.Context, calendarID string, filters []string) ([]*calendar.Event, error) {
	var out []*calendar.Event
	call := g.svc.Events.List(calendarID).
		PrivateExtendedProperty(filters...).
		SingleEvents(false).
		ShowDeleted(false).
		MaxResults(listPageSize)
	err := call.Pages(ctx, func(page *calendar.Events) error {
		out = append(out, page.Items...)
		return nil
	})
	if err != nil {
		return nil, wrapError("list events", err)
	}
	return out, nil
}

func (g *GoogleRemote) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return wrapError("delete event "+eventID, g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do())
}

func (g *GoogleRemote) InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error) {
	created, err := g.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, wrapError("insert event", err)
	}
	return created, nil
}

// ListOwnedCalendars lists visible calendars the token owns.
func (g *GoogleRemote) ListOwnedCalendars(ctx context.Context) ([]*calendar.CalendarListEntry, error) {
	var out []*calendar.CalendarListEntry
	call := g.svc.CalendarList.List().
		MinAccessRole("owner").
		ShowHidden(false).
		MaxResults(listPageSize)
	err := call.Pages(ctx, func(page *calendar.CalendarList) error {
		out = append(out, page.Items...)
		return nil
	})
	if err != nil {
		return nil, wrapError("list calendars", err)
	}
	return out, nil
}

func (g *GoogleRemote) CreateCalendar(ctx context.Context, cal *calendar.Calendar) (*calendar.Calendar, error) {
	created, err := g.svc.Calendars.Insert(cal).Context(ctx).Do()
	if err != nil {
		return nil, wrapError("create calendar", err)
	}
	return created, nil
}
