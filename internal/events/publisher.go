package events

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=./mocks/publisher_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"resa/config"
	"resa/infras/otel"
	"resa/internal/domains/reservation/model"
	"resa/shared/constant"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Event types carried on the reservation change feed.
const (
	TypeInsert = "insert"
	TypeUpdate = "update"
	TypeDelete = "delete"
)

// Record is the post-image payload published for insert and update
// events, in wire naming.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Envelope is a single change-feed message. Insert and update carry the
// post-image record; delete carries only the identifying key.
type Envelope struct {
	Type   string  `json:"type"`
	Record *Record `json:"record,omitempty"`
	ID     string  `json:"id,omitempty"`
}

// Publisher pushes reservation change events onto the feed channel.
// Publishing is best-effort from the writer's point of view: a failed
// publish never fails the write that produced it.
type Publisher interface {
	Insert(ctx context.Context, reservation model.Reservation) error
	Update(ctx context.Context, reservation model.Reservation) error
	Delete(ctx context.Context, id string) error
}

type redisPublisher struct {
	client  *redis.Client
	channel string
	otel    otel.Otel
}

func NewPublisher(client *redis.Client, cfg *config.Config, ot otel.Otel) Publisher {
	return &redisPublisher{
		client:  client,
		channel: cfg.Feed.Channel,
		otel:    ot,
	}
}

func (p *redisPublisher) Insert(ctx context.Context, reservation model.Reservation) error {
	return p.publish(ctx, Envelope{Type: TypeInsert, Record: recordFromModel(reservation)})
}

func (p *redisPublisher) Update(ctx context.Context, reservation model.Reservation) error {
	return p.publish(ctx, Envelope{Type: TypeUpdate, Record: recordFromModel(reservation)})
}

func (p *redisPublisher) Delete(ctx context.Context, id string) error {
	return p.publish(ctx, Envelope{Type: TypeDelete, ID: id})
}

func (p *redisPublisher) publish(ctx context.Context, envelope Envelope) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".publish")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute("feed.event_type", envelope.Type)

	payload, err := json.Marshal(envelope)
	if err != nil {
		log.Error().Err(err).Str("type", envelope.Type).Msg("failed to marshal feed event")

		return fmt.Errorf("failed to marshal feed event: %w", err)
	}

	if err = p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("type", envelope.Type).Str("channel", p.channel).Msg("failed to publish feed event")

		return fmt.Errorf("failed to publish feed event: %w", err)
	}

	return nil
}

func recordFromModel(reservation model.Reservation) *Record {
	return &Record{
		ID:        reservation.ID,
		Name:      reservation.Name,
		Phone:     reservation.Phone,
		Date:      reservation.Date,
		TimeSlot:  reservation.TimeSlot,
		Status:    reservation.Status,
		CreatedAt: reservation.CreatedAt,
	}
}
