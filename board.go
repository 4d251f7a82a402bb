package main

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type eventService interface {
	GetProfile(ctx context.Context) (*Profile, error)
	ListEvents(ctx context.Context) (*EventList, error)
	CreateEvent(ctx context.Context, draft CalendarEvent) (*CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, draft CalendarEvent) (*CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

var _ eventService = (*CalendarClient)(nil)

// Board is the state the CLI and the browser front-end render. The event
// list is only ever replaced by a full reload after a successful call; a
// failed call records the error and leaves the list alone.
type Board struct {
	svc eventService
	loc *time.Location
	log zerolog.Logger

	mu        sync.Mutex
	failLevel zerolog.Level
	profile   *Profile
	events    []CalendarEvent
	loaded    bool
	lastErr   error
}

func NewBoard(svc eventService, loc *time.Location) *Board {
	return &Board{svc: svc, loc: loc, log: logger, failLevel: zerolog.ErrorLevel}
}

// LogFailuresAt sets the level failed calls are logged at. Callers that
// print the error to the user themselves lower it to debug.
func (b *Board) LogFailuresAt(level zerolog.Level) {
	b.mu.Lock()
	b.failLevel = level
	b.mu.Unlock()
}

func (b *Board) LoadProfile(ctx context.Context) error {
	profile, err := b.svc.GetProfile(ctx)
	if err != nil {
		return b.fail("getProfile", err)
	}

	b.mu.Lock()
	b.profile = profile
	b.lastErr = nil
	b.mu.Unlock()
	return nil
}

func (b *Board) Refresh(ctx context.Context) error {
	list, err := b.svc.ListEvents(ctx)
	if err != nil {
		return b.fail("listEvents", err)
	}

	b.mu.Lock()
	b.events = slices.Clone(list.Value)
	b.loaded = true
	b.lastErr = nil
	b.mu.Unlock()
	return nil
}

func (b *Board) Add(ctx context.Context, form EventForm) (*CalendarEvent, error) {
	created, err := b.svc.CreateEvent(ctx, form.Draft(b.loc))
	if err != nil {
		return nil, b.fail("createEvent", err)
	}
	b.log.Info().Str("id", created.ID).Str("subject", created.Subject).Msg("event created")
	return created, b.Refresh(ctx)
}

// OpenEdit pre-fills the edit form from the loaded list.
func (b *Board) OpenEdit(id string) (EventForm, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.events {
		if e.ID == id {
			return formFromEvent(e, b.loc), nil
		}
	}
	return EventForm{}, ErrEventNotFound
}

func (b *Board) SaveEdit(ctx context.Context, id string, form EventForm) (*CalendarEvent, error) {
	updated, err := b.svc.UpdateEvent(ctx, id, form.Draft(b.loc))
	if err != nil {
		return nil, b.fail("updateEvent", err)
	}
	b.log.Info().Str("id", id).Msg("event updated")
	return updated, b.Refresh(ctx)
}

func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.svc.DeleteEvent(ctx, id); err != nil {
		return b.fail("deleteEvent", err)
	}
	b.log.Info().Str("id", id).Msg("event deleted")
	return b.Refresh(ctx)
}

func (b *Board) fail(op string, err error) error {
	b.mu.Lock()
	b.lastErr = err
	level := b.failLevel
	b.mu.Unlock()

	b.log.WithLevel(level).Err(err).Str("op", op).Bool("auth", IsAuthError(err)).Msg("calendar operation failed")
	return err
}

// EventRow is an event rendered in the business timezone.
type EventRow struct {
	ID      string
	Subject string
	Start   string
	End     string
}

type BoardView struct {
	Profile  *Profile
	Events   []EventRow
	Loaded   bool
	Banner   string
	TimeZone string
}

func (b *Board) View() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()

	view := BoardView{
		Profile:  b.profile,
		Loaded:   b.loaded,
		TimeZone: b.loc.String(),
	}
	if b.lastErr != nil {
		view.Banner = formatError(b.lastErr)
	}
	for _, e := range b.events {
		view.Events = append(view.Events, EventRow{
			ID:      e.ID,
			Subject: e.Subject,
			Start:   displayTime(e.Start, b.loc),
			End:     displayTime(e.End, b.loc),
		})
	}
	return view
}

// Events returns a copy of the loaded list.
func (b *Board) Events() []CalendarEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events)
}
