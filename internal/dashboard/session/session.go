package session

import (
	"context"

	"resa/internal/dashboard"
	"resa/internal/dashboard/feed"
	"resa/internal/dashboard/mutator"
	"resa/internal/dashboard/notify"
	"resa/internal/dashboard/store"
	"resa/internal/dashboard/view"
)

// API is the slice of the reservation service a dashboard session needs.
type API interface {
	mutator.Remote
	FetchAll(ctx context.Context) ([]dashboard.Reservation, error)
}

// Session owns one dashboard's reservation collection: the initial load,
// the live feed keeping it fresh, and the optimistic write path.
type Session struct {
	api      API
	store    *store.Store
	listener *feed.Listener
	mutator  *mutator.Mutator
}

func New(api API, channel feed.Channel, notifier notify.Notifier, feedCfg feed.Config, mutatorCfg mutator.Config) *Session {
	s := store.New()
	m := mutator.New(s, api, notifier, mutatorCfg)
	l := feed.NewListener(channel, s, notifier, m, feedCfg)

	return &Session{
		api:      api,
		store:    s,
		listener: l,
		mutator:  m,
	}
}

// Open loads the full collection and attaches to the change feed. The
// load happens first so feed events land on a populated store.
func (s *Session) Open(ctx context.Context) error {
	records, err := s.api.FetchAll(ctx)
	if err != nil {
		return err
	}

	s.store.ReplaceAll(records)

	return s.listener.Start(ctx)
}

// Reservations returns the collection filtered and sorted by the query.
func (s *Session) Reservations(q view.Query) []dashboard.Reservation {
	return view.Apply(s.store.Snapshot(), q)
}

// Reservation returns a single record from the local collection.
func (s *Session) Reservation(id string) (dashboard.Reservation, bool) {
	return s.store.Get(id)
}

// SetStatus optimistically moves a reservation to the given status.
func (s *Session) SetStatus(ctx context.Context, id, status string) error {
	return s.mutator.SetStatus(ctx, id, status)
}

// Apply optimistically applies wire-named field edits to a reservation.
func (s *Session) Apply(ctx context.Context, id string, fields map[string]any) error {
	return s.mutator.Apply(ctx, id, fields)
}

// FeedState reports the live-update connection state.
func (s *Session) FeedState() feed.State {
	return s.listener.State()
}

// Close detaches from the feed and waits for in-flight writes to wind
// down. The session cannot be reopened afterwards.
func (s *Session) Close() {
	s.listener.Stop()
	s.mutator.Close()
}
