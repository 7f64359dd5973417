package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"resa/config"
	"resa/infras/kafka"
	"resa/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	senderTimeout = 10 * time.Second

	// configHint is logged when delivery is impossible so an operator
	// knows which variables to set.
	configHint = "set MESSAGING_ENDPOINT and MESSAGING_API_KEY to enable outbound messages"
)

// Worker consumes queued reservation-created messages and delivers them
// to the configured messaging gateway. Delivery failures degrade to a
// log line; nothing here ever reaches back into the reservation write.
type Worker struct {
	cfg    *config.Config
	kafka  kafka.Client
	client *http.Client
}

func NewWorker(cfg *config.Config, kafkaClient kafka.Client) *Worker {
	return &Worker{
		cfg:   cfg,
		kafka: kafkaClient,
		client: &http.Client{
			Timeout: senderTimeout,
		},
	}
}

// Start blocks consuming the reservation-created topic until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.kafka.Consume(ctx, constant.Empty, constant.KafkaTopicReservationCreated, w.handle)
}

func (w *Worker) handle(msg kafkaGo.Message) {
	decoded, err := kafka.DecodeKafkaMessage[OutboundMessage](msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode outbound message, dropping")

		return
	}

	message, ok := decoded.Value.(OutboundMessage)
	if !ok {
		log.Error().Msg("unexpected outbound message payload, dropping")

		return
	}

	w.send(context.Background(), message)
}

func (w *Worker) send(ctx context.Context, message OutboundMessage) {
	if w.cfg.Messaging.Endpoint == constant.Empty {
		log.Warn().Str("hint", configHint).Msg("messaging endpoint not configured, dropping outbound message")

		return
	}

	body, err := json.Marshal(map[string]string{
		"to":   message.Phone,
		"text": message.Text(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal outbound message body")

		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.Messaging.Endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("failed to build outbound message request")

		return
	}

	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	req.Header.Set(constant.RequestHeaderAPIKey, w.cfg.Messaging.APIKey)

	resp, err := w.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("hint", configHint).Msg("messaging endpoint unreachable, dropping outbound message")

		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn().Int("status", resp.StatusCode).Str("phone", message.Phone).Msg("messaging endpoint rejected outbound message")

		return
	}

	log.Info().Str("phone", message.Phone).Msg("outbound message delivered")
}
