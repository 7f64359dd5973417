package mutator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"resa/internal/dashboard"
	"resa/internal/dashboard/notify"
	"resa/internal/dashboard/store"
	"resa/shared/constant"
)

// Remote is the slice of the reservation API the mutator needs.
type Remote interface {
	Fetch(ctx context.Context, id string) (dashboard.Reservation, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// State tracks where a record's write currently is.
type State int

const (
	StateIdle State = iota
	StateInFlight
	StateVerifying
	StateReverting
)

func (s State) String() string {
	switch s {
	case StateInFlight:
		return "in-flight"
	case StateVerifying:
		return "verifying"
	case StateReverting:
		return "reverting"
	default:
		return "idle"
	}
}

var (
	ErrUpdateInFlight     = errors.New("an update for this reservation is already in flight")
	ErrUnknownReservation = errors.New("reservation is not in the local collection")
	ErrInvalidStatus      = errors.New("unrecognized reservation status")
)

// Config holds the write-path timing knobs.
type Config struct {
	// MaxAttempts is the total number of remote write attempts,
	// including the first one.
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number before each
	// retry, so waits grow linearly.
	RetryBackoff time.Duration
	// VerifyDelay is how long to wait after a successful write before
	// reading the record back.
	VerifyDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		RetryBackoff: 500 * time.Millisecond,
		VerifyDelay:  2 * time.Second,
	}
}

// Mutator applies reservation edits optimistically: the store is updated
// first, the remote write happens in the background with retries, and a
// failed write reverts the store. A successful write is read back after
// a delay; when the remote still disagrees, exactly one corrective write
// is issued and the local value stays authoritative.
//
// At most one mutation per id runs at a time.
type Mutator struct {
	store    *store.Store
	remote   Remote
	notifier notify.Notifier
	cfg      Config

	mu     sync.Mutex
	states map[string]State
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func New(s *store.Store, remote Remote, notifier notify.Notifier, cfg Config) *Mutator {
	return &Mutator{
		store:    s,
		remote:   remote,
		notifier: notifier,
		cfg:      cfg,
		states:   make(map[string]State),
		closed:   make(chan struct{}),
	}
}

// SetStatus optimistically moves the reservation to the given status and
// starts the background write. It returns immediately; a second call for
// the same id while the first is still settling is rejected with
// ErrUpdateInFlight.
func (m *Mutator) SetStatus(ctx context.Context, id, status string) error {
	if !constant.ValidStatus(status) {
		return ErrInvalidStatus
	}

	return m.Apply(ctx, id, map[string]any{dashboard.FieldStatus: status})
}

// Apply optimistically applies the given wire-named fields to the local
// record and starts the background write.
func (m *Mutator) Apply(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return errors.New("no fields to apply")
	}

	prev, ok := m.store.Get(id)
	if !ok {
		return ErrUnknownReservation
	}

	if !m.begin(id) {
		return ErrUpdateInFlight
	}

	want := applyFields(prev, fields)
	m.upsert(want)

	m.wg.Add(1)
	go m.settle(ctx, id, prev, want, fields)

	return nil
}

// InFlight reports whether a mutation for the given id has not settled
// yet. The feed listener uses it to suppress redundant notifications for
// the echo of the dashboard's own write.
func (m *Mutator) InFlight(id string) bool {
	return m.State(id) != StateIdle
}

// State returns the current write state for the given id.
func (m *Mutator) State(id string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.states[id]
}

// Close cancels pending verification timers and waits for in-flight
// settles to wind down. No store mutation happens after Close returns.
func (m *Mutator) Close() {
	m.once.Do(func() {
		close(m.closed)
	})

	m.wg.Wait()
}

func (m *Mutator) settle(ctx context.Context, id string, prev, want dashboard.Reservation, fields map[string]any) {
	defer m.wg.Done()
	defer m.finish(id)

	if err := m.writeWithRetry(ctx, id, fields); err != nil {
		m.setState(id, StateReverting)
		m.revert(ctx, id, prev)
		m.notifier.Error(fmt.Sprintf("could not save reservation %s: %v", id, err))

		return
	}

	m.setState(id, StateVerifying)

	select {
	case <-m.closed:
		return
	case <-ctx.Done():
		return
	case <-time.After(m.cfg.VerifyDelay):
	}

	m.verify(ctx, id, want, fields)
	m.notifier.Success(fmt.Sprintf("reservation %s saved", id))
}

func (m *Mutator) writeWithRetry(ctx context.Context, id string, fields map[string]any) error {
	var err error

	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		err = m.remote.Update(ctx, id, fields)
		if err == nil {
			return nil
		}

		log.Warn().Err(err).Str("id", id).Int("attempt", attempt).
			Msg("[writeWithRetry] Reservation write failed")

		if attempt == m.cfg.MaxAttempts {
			break
		}

		select {
		case <-m.closed:
			return err
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * m.cfg.RetryBackoff):
		}
	}

	return err
}

// revert restores the record after a failed write. The current remote
// value wins when it can be read; otherwise the pre-edit snapshot is the
// best truth available.
func (m *Mutator) revert(ctx context.Context, id string, prev dashboard.Reservation) {
	got, err := m.remote.Fetch(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("id", id).
			Msg("[revert] Re-fetch failed, restoring previous snapshot")
		m.upsert(prev)

		return
	}

	m.upsert(got)
}

// verify reads the record back and issues at most one corrective write
// when the remote lost the change. The optimistic local value stays in
// the store either way.
func (m *Mutator) verify(ctx context.Context, id string, want dashboard.Reservation, fields map[string]any) {
	got, err := m.remote.Fetch(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("[verify] Verification read failed")
		return
	}

	if fieldsMatch(got, fields) {
		return
	}

	log.Warn().Str("id", id).Msg("[verify] Remote record diverged after write, correcting once")

	if err := m.remote.Update(ctx, id, fields); err != nil {
		log.Error().Err(err).Str("id", id).Msg("[verify] Corrective write failed")
	}

	m.upsert(want)
}

func (m *Mutator) begin(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.states[id] != StateIdle {
		return false
	}

	m.states[id] = StateInFlight

	return true
}

func (m *Mutator) setState(id string, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[id] = state
}

func (m *Mutator) finish(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, id)
}

func (m *Mutator) upsert(r dashboard.Reservation) {
	select {
	case <-m.closed:
		return
	default:
	}

	m.store.Upsert(r)
}

func applyFields(r dashboard.Reservation, fields map[string]any) dashboard.Reservation {
	for key, value := range fields {
		text, ok := value.(string)
		if !ok {
			continue
		}

		switch key {
		case dashboard.FieldName:
			r.Name = text
		case dashboard.FieldPhone:
			r.Phone = text
		case dashboard.FieldDate:
			r.Date = text
		case dashboard.FieldTimeSlot:
			r.TimeSlot = text
		case dashboard.FieldStatus:
			r.Status = text
		}
	}

	return r
}

func fieldsMatch(r dashboard.Reservation, fields map[string]any) bool {
	return applyFields(r, fields) == r
}
