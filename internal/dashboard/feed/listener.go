package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"resa/internal/dashboard"
	"resa/internal/dashboard/notify"
	"resa/internal/dashboard/store"
)

// State is the listener's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

var ErrStopped = errors.New("listener is stopped")

// InFlightChecker reports whether the dashboard currently has its own
// write settling for an id. Feed events for such ids are skipped: the
// mutator owns the record until the write settles.
type InFlightChecker interface {
	InFlight(id string) bool
}

type envelope struct {
	Type   string                 `json:"type"`
	Record *dashboard.Reservation `json:"record"`
	ID     string                 `json:"id"`
}

// Listener keeps the store in sync with the change feed. It holds at
// most one live subscription: a subscription that is never acknowledged
// within the ack timeout is abandoned without retry, while a connection
// that drops after being established is re-established forever on a
// fixed delay.
type Listener struct {
	channel  Channel
	store    *store.Store
	notifier notify.Notifier
	inFlight InFlightChecker
	cfg      Config

	mu      sync.Mutex
	state   State
	stopped bool
	gen     int
	sub     Subscription
	stop    chan struct{}
}

func NewListener(channel Channel, s *store.Store, notifier notify.Notifier, inFlight InFlightChecker, cfg Config) *Listener {
	return &Listener{
		channel:  channel,
		store:    s,
		notifier: notifier,
		inFlight: inFlight,
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
}

// Start attaches to the change feed and begins applying events to the
// store. Calling Start while a subscription is live tears the old one
// down first, so at most one is ever active.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}

	l.gen++
	gen := l.gen
	if l.sub != nil {
		_ = l.sub.Close()
		l.sub = nil
	}
	l.mu.Unlock()

	go l.loop(ctx, gen)

	return nil
}

// Stop detaches from the feed and stops all store mutations. It is
// idempotent and also cancels any pending reconnect wait.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return
	}

	l.stopped = true
	l.state = StateDisconnected
	close(l.stop)

	if l.sub != nil {
		_ = l.sub.Close()
		l.sub = nil
	}
}

// State returns the current connection state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

func (l *Listener) loop(ctx context.Context, gen int) {
	wasConnected := false

	for {
		if !l.setState(gen, StateConnecting) {
			return
		}

		sub, err := l.channel.Subscribe(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("[loop] Change feed subscribe failed")
			l.setState(gen, StateDisconnected)

			if !wasConnected {
				l.notifier.Warn("live updates are unavailable, refresh to retry")
				return
			}

			if !l.sleep(l.cfg.ReconnectDelay) {
				return
			}

			continue
		}

		if !l.track(gen, sub) {
			_ = sub.Close()
			return
		}

		select {
		case <-l.stop:
			_ = sub.Close()
			return
		case <-time.After(l.cfg.AckTimeout):
			_ = sub.Close()
			l.setState(gen, StateDisconnected)

			if !wasConnected {
				log.Warn().Dur("timeout", l.cfg.AckTimeout).
					Msg("[loop] Change feed never acknowledged the subscription")
				l.notifier.Warn("live updates are unavailable, refresh to retry")
				return
			}

			if !l.sleep(l.cfg.ReconnectDelay) {
				return
			}

			continue
		case <-sub.Ready():
		}

		if !l.setState(gen, StateConnected) {
			_ = sub.Close()
			return
		}
		wasConnected = true

	consume:
		for {
			select {
			case <-l.stop:
				_ = sub.Close()
				return
			case payload, ok := <-sub.Messages():
				if !ok {
					break consume
				}

				l.handle(payload)
			}
		}

		// The dead subscription still holds its pub/sub object; release
		// it before re-subscribing.
		_ = sub.Close()

		if !l.setState(gen, StateDisconnected) {
			return
		}

		log.Warn().Err(sub.Err()).Msg("[loop] Change feed connection lost")
		l.notifier.Warn("live updates were interrupted, reconnecting")

		if !l.sleep(l.cfg.ReconnectDelay) {
			return
		}
	}
}

func (l *Listener) handle(payload []byte) {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()

	if stopped {
		return
	}

	var event envelope
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Error().Err(err).Msg("[handle] Dropping malformed change feed event")
		return
	}

	switch event.Type {
	case typeInsert:
		l.handleInsert(event.Record)
	case typeUpdate:
		l.handleUpdate(event.Record)
	case typeDelete:
		l.handleDelete(event)
	default:
		log.Warn().Str("type", event.Type).Msg("[handle] Dropping change feed event of unknown type")
	}
}

func (l *Listener) handleInsert(record *dashboard.Reservation) {
	if !validRecord(record, typeInsert) {
		return
	}

	existed := l.store.Upsert(*record)
	if existed {
		return
	}

	l.notifier.Info(fmt.Sprintf("new reservation from %s for %s, %s", record.Name, record.Date, record.TimeSlot))
}

func (l *Listener) handleUpdate(record *dashboard.Reservation) {
	if !validRecord(record, typeUpdate) {
		return
	}

	// The echo of the dashboard's own write: the mutator owns the
	// record until its write settles. The store write is skipped along
	// with the notification: upserting the echoed record here would
	// clobber the optimistic value mid-settle, and the mutator's verify
	// pass reconciles the store against remote truth when it finishes.
	if l.inFlight != nil && l.inFlight.InFlight(record.ID) {
		return
	}

	l.store.Upsert(*record)
}

func (l *Listener) handleDelete(event envelope) {
	id := event.ID
	if id == "" && event.Record != nil {
		id = event.Record.ID
	}

	if id == "" {
		log.Error().Msg("[handleDelete] Dropping delete event without an id")
		return
	}

	l.store.Remove(id)
}

// setState reports false when the generation is stale or the listener
// was stopped, in which case the caller's loop must exit.
func (l *Listener) setState(gen int, state State) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped || gen != l.gen {
		return false
	}

	l.state = state

	return true
}

func (l *Listener) track(gen int, sub Subscription) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped || gen != l.gen {
		return false
	}

	l.sub = sub

	return true
}

func (l *Listener) sleep(d time.Duration) bool {
	select {
	case <-l.stop:
		return false
	case <-time.After(d):
		return true
	}
}

func validRecord(record *dashboard.Reservation, eventType string) bool {
	if record == nil {
		log.Error().Str("type", eventType).Msg("[validRecord] Dropping change feed event without a record")
		return false
	}

	if err := record.Validate(); err != nil {
		log.Error().Err(err).Str("type", eventType).Str("id", record.ID).
			Msg("[validRecord] Dropping change feed event with an invalid record")
		return false
	}

	return true
}
