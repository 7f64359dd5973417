package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resa/internal/dashboard"
	"resa/internal/dashboard/feed"
	"resa/internal/dashboard/mutator"
	"resa/internal/dashboard/session"
	"resa/internal/dashboard/view"
	"resa/shared/constant"
)

type fakeAPI struct {
	mu      sync.Mutex
	records []dashboard.Reservation
}

func (f *fakeAPI) FetchAll(context.Context) ([]dashboard.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]dashboard.Reservation(nil), f.records...), nil
}

func (f *fakeAPI) Fetch(_ context.Context, id string) (dashboard.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}

	return dashboard.Reservation{}, mutator.ErrUnknownReservation
}

func (f *fakeAPI) Update(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, r := range f.records {
		if r.ID != id {
			continue
		}

		if status, ok := fields[dashboard.FieldStatus].(string); ok {
			f.records[i].Status = status
		}
	}

	return nil
}

type fakeSub struct {
	ready    chan struct{}
	messages chan []byte
	once     sync.Once
}

func (s *fakeSub) Ready() <-chan struct{}  { return s.ready }
func (s *fakeSub) Messages() <-chan []byte { return s.messages }
func (s *fakeSub) Err() error              { return nil }

func (s *fakeSub) Close() error {
	s.once.Do(func() {
		close(s.messages)
	})

	return nil
}

type fakeChannel struct {
	mu  sync.Mutex
	sub *fakeSub
}

func (c *fakeChannel) Subscribe(context.Context) (feed.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sub = &fakeSub{
		ready:    make(chan struct{}),
		messages: make(chan []byte, 16),
	}
	close(c.sub.ready)

	return c.sub, nil
}

func (c *fakeChannel) push(t *testing.T, eventType string, r dashboard.Reservation) {
	t.Helper()

	payload, err := json.Marshal(map[string]any{"type": eventType, "record": r})
	require.NoError(t, err)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sub.messages <- payload
}

type silentNotifier struct{}

func (silentNotifier) Info(string)    {}
func (silentNotifier) Success(string) {}
func (silentNotifier) Warn(string)    {}
func (silentNotifier) Error(string)   {}

func record(id, name, date, status string) dashboard.Reservation {
	return dashboard.Reservation{
		ID:       id,
		Name:     name,
		Phone:    "812000001",
		Date:     date,
		TimeSlot: constant.TimeSlots[0],
		Status:   status,
	}
}

func TestSession(t *testing.T) {
	api := &fakeAPI{records: []dashboard.Reservation{
		record("a", "Ana", "10/09/2026", constant.StatusPending),
		record("b", "Ben", "12/09/2026", constant.StatusConfirmed),
	}}
	channel := &fakeChannel{}

	s := session.New(api, channel, silentNotifier{}, feed.Config{
		AckTimeout:     time.Second,
		ReconnectDelay: 10 * time.Millisecond,
	}, mutator.Config{
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
		VerifyDelay:  5 * time.Millisecond,
	})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))

	require.Eventually(t, func() bool {
		return s.FeedState() == feed.StateConnected
	}, time.Second, time.Millisecond)

	t.Run("initial load fills the collection", func(t *testing.T) {
		got := s.Reservations(view.Query{})
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].ID, "newest appointment first")
	})

	t.Run("a feed insert appears in query results", func(t *testing.T) {
		channel.push(t, "insert", record("c", "Cai", "11/09/2026", constant.StatusPending))

		require.Eventually(t, func() bool {
			_, ok := s.Reservation("c")
			return ok
		}, time.Second, time.Millisecond)

		got := s.Reservations(view.Query{Order: view.OrderOldest})
		require.Len(t, got, 3)
		assert.Equal(t, []string{"a", "c", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("a status change is visible immediately and settles remotely", func(t *testing.T) {
		require.NoError(t, s.SetStatus(context.Background(), "a", constant.StatusNotResponding))

		got, ok := s.Reservation("a")
		require.True(t, ok)
		assert.Equal(t, constant.StatusNotResponding, got.Status)

		require.Eventually(t, func() bool {
			remote, err := api.Fetch(context.Background(), "a")
			return err == nil && remote.Status == constant.StatusNotResponding
		}, time.Second, time.Millisecond)
	})

	t.Run("filters narrow the collection", func(t *testing.T) {
		got := s.Reservations(view.Query{Status: constant.StatusConfirmed})
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})
}
