package mutator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resa/internal/dashboard"
	"resa/internal/dashboard/mutator"
	"resa/internal/dashboard/store"
	"resa/shared/constant"
)

type fakeRemote struct {
	mu           sync.Mutex
	record       dashboard.Reservation
	updateErrs   []error
	updateCalls  int
	fetchErr     error
	applyUpdates bool
}

func (f *fakeRemote) Fetch(_ context.Context, _ string) (dashboard.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return dashboard.Reservation{}, f.fetchErr
	}

	return f.record, nil
}

func (f *fakeRemote) Update(_ context.Context, _ string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]

		if err != nil {
			return err
		}
	}

	if f.applyUpdates {
		if status, ok := fields[dashboard.FieldStatus].(string); ok {
			f.record.Status = status
		}
	}

	return nil
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.updateCalls
}

type fakeNotifier struct {
	mu        sync.Mutex
	errors    []string
	successes []string
}

func (f *fakeNotifier) Info(string) {}
func (f *fakeNotifier) Warn(string) {}

func (f *fakeNotifier) Success(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.successes = append(f.successes, msg)
}

func (f *fakeNotifier) Error(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.errors = append(f.errors, msg)
}

func (f *fakeNotifier) errorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.errors)
}

func (f *fakeNotifier) successCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.successes)
}

func pendingRecord() dashboard.Reservation {
	return dashboard.Reservation{
		ID:       "a",
		Name:     "Ana",
		Phone:    "812000001",
		Date:     "10/09/2026",
		TimeSlot: constant.TimeSlots[0],
		Status:   constant.StatusPending,
	}
}

func tightConfig() mutator.Config {
	return mutator.Config{
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
		VerifyDelay:  5 * time.Millisecond,
	}
}

func waitSettled(t *testing.T, m *mutator.Mutator, id string) {
	t.Helper()

	require.Eventually(t, func() bool {
		return m.State(id) == mutator.StateIdle
	}, time.Second, time.Millisecond)
}

func TestMutator_SetStatus(t *testing.T) {
	t.Run("applies optimistically and confirms on success", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

		remote := &fakeRemote{record: pendingRecord(), applyUpdates: true}
		notifier := &fakeNotifier{}
		m := mutator.New(s, remote, notifier, tightConfig())
		defer m.Close()

		require.NoError(t, m.SetStatus(context.Background(), "a", constant.StatusConfirmed))

		got, ok := s.Get("a")
		require.True(t, ok)
		assert.Equal(t, constant.StatusConfirmed, got.Status, "store must change before the remote write settles")

		waitSettled(t, m, "a")

		got, _ = s.Get("a")
		assert.Equal(t, constant.StatusConfirmed, got.Status)
		assert.Equal(t, 1, remote.calls())
		assert.Equal(t, 1, notifier.successCount())
		assert.Zero(t, notifier.errorCount())
	})

	t.Run("retries transient failures before succeeding", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

		remote := &fakeRemote{
			record:       pendingRecord(),
			applyUpdates: true,
			updateErrs:   []error{errors.New("boom"), errors.New("boom")},
		}
		notifier := &fakeNotifier{}
		m := mutator.New(s, remote, notifier, tightConfig())
		defer m.Close()

		require.NoError(t, m.SetStatus(context.Background(), "a", constant.StatusConfirmed))
		waitSettled(t, m, "a")

		got, _ := s.Get("a")
		assert.Equal(t, constant.StatusConfirmed, got.Status)
		assert.Equal(t, 3, remote.calls())
		assert.Zero(t, notifier.errorCount())
	})

	t.Run("reverts to the remote value when every attempt fails", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

		remoteTruth := pendingRecord()
		remoteTruth.Status = constant.StatusNotResponding

		remote := &fakeRemote{
			record:     remoteTruth,
			updateErrs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
		}
		notifier := &fakeNotifier{}
		m := mutator.New(s, remote, notifier, tightConfig())
		defer m.Close()

		require.NoError(t, m.SetStatus(context.Background(), "a", constant.StatusConfirmed))
		waitSettled(t, m, "a")

		got, _ := s.Get("a")
		assert.Equal(t, constant.StatusNotResponding, got.Status, "re-fetched remote value wins the revert")
		assert.Equal(t, 3, remote.calls())
		assert.Equal(t, 1, notifier.errorCount())
		assert.Zero(t, notifier.successCount())
	})

	t.Run("falls back to the previous snapshot when the revert read fails too", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

		remote := &fakeRemote{
			fetchErr:   errors.New("down"),
			updateErrs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
		}
		notifier := &fakeNotifier{}
		m := mutator.New(s, remote, notifier, tightConfig())
		defer m.Close()

		require.NoError(t, m.SetStatus(context.Background(), "a", constant.StatusConfirmed))
		waitSettled(t, m, "a")

		got, _ := s.Get("a")
		assert.Equal(t, constant.StatusPending, got.Status)
	})

	t.Run("rejects a second call while the first is in flight", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

		remote := &fakeRemote{record: pendingRecord(), applyUpdates: true}
		m := mutator.New(s, remote, &fakeNotifier{}, mutator.Config{
			MaxAttempts:  1,
			RetryBackoff: time.Millisecond,
			VerifyDelay:  200 * time.Millisecond,
		})
		defer m.Close()

		require.NoError(t, m.SetStatus(context.Background(), "a", constant.StatusConfirmed))

		err := m.SetStatus(context.Background(), "a", constant.StatusCanceled)
		assert.ErrorIs(t, err, mutator.ErrUpdateInFlight)

		got, _ := s.Get("a")
		assert.Equal(t, constant.StatusConfirmed, got.Status, "second call must not touch the store")
	})

	t.Run("issues exactly one corrective write when verification finds stale data", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

		// Update succeeds but the remote record never reflects it.
		remote := &fakeRemote{record: pendingRecord(), applyUpdates: false}
		notifier := &fakeNotifier{}
		m := mutator.New(s, remote, notifier, tightConfig())
		defer m.Close()

		require.NoError(t, m.SetStatus(context.Background(), "a", constant.StatusConfirmed))
		waitSettled(t, m, "a")

		assert.Equal(t, 2, remote.calls(), "one write plus one corrective write")

		got, _ := s.Get("a")
		assert.Equal(t, constant.StatusConfirmed, got.Status, "local optimistic value stays authoritative")
		assert.Equal(t, 1, notifier.successCount())
	})

	t.Run("rejects unknown reservations and statuses", func(t *testing.T) {
		s := store.New()
		s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

		m := mutator.New(s, &fakeRemote{}, &fakeNotifier{}, tightConfig())
		defer m.Close()

		err := m.SetStatus(context.Background(), "missing", constant.StatusConfirmed)
		assert.ErrorIs(t, err, mutator.ErrUnknownReservation)

		err = m.SetStatus(context.Background(), "a", "Archived")
		assert.ErrorIs(t, err, mutator.ErrInvalidStatus)
	})
}

func TestMutator_Apply(t *testing.T) {
	s := store.New()
	s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

	remote := &fakeRemote{record: pendingRecord(), applyUpdates: true}
	m := mutator.New(s, remote, &fakeNotifier{}, tightConfig())
	defer m.Close()

	err := m.Apply(context.Background(), "a", map[string]any{
		dashboard.FieldName:     "Ana Maria",
		dashboard.FieldTimeSlot: constant.TimeSlots[1],
	})
	require.NoError(t, err)

	got, _ := s.Get("a")
	assert.Equal(t, "Ana Maria", got.Name)
	assert.Equal(t, constant.TimeSlots[1], got.TimeSlot)

	waitSettled(t, m, "a")
}

func TestMutator_Close(t *testing.T) {
	s := store.New()
	s.ReplaceAll([]dashboard.Reservation{pendingRecord()})

	m := mutator.New(s, &fakeRemote{record: pendingRecord()}, &fakeNotifier{}, tightConfig())

	m.Close()
	m.Close()
}
