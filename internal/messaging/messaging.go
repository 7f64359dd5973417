package messaging

//go:generate go run go.uber.org/mock/mockgen -source=./messaging.go -destination=./mocks/messaging_mock.go -package=mocks

import (
	"context"
	"fmt"
	"resa/infras/kafka"
	"resa/shared/constant"

	"github.com/rs/zerolog/log"
)

// OutboundMessage is the payload queued for the messaging worker when a
// reservation is created.
type OutboundMessage struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

// Text renders the customer-facing confirmation message.
func (m OutboundMessage) Text() string {
	return fmt.Sprintf("New reservation: %s (%s) on %s, %s", m.Name, m.Phone, m.Date, m.TimeSlot)
}

// Queue hands outbound messages to the messaging worker. Enqueueing is
// best-effort and must never gate the reservation write.
type Queue interface {
	Enqueue(ctx context.Context, message OutboundMessage) error
}

type queueImpl struct {
	kafka kafka.Client
}

func NewQueue(kafkaClient kafka.Client) Queue {
	return &queueImpl{
		kafka: kafkaClient,
	}
}

func (q *queueImpl) Enqueue(ctx context.Context, message OutboundMessage) error {
	err := q.kafka.SendMessages(ctx, constant.KafkaTopicReservationCreated, kafka.Message{
		Key:   message.Phone,
		Value: message,
	})
	if err != nil {
		log.Error().Err(err).Str("phone", message.Phone).Msg("failed to enqueue outbound message")

		return fmt.Errorf("failed to enqueue outbound message: %w", err)
	}

	return nil
}
