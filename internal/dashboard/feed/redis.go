package feed

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisChannel subscribes to the reservation change feed over Redis
// pub/sub. Receiving the subscription confirmation counts as the ack.
type RedisChannel struct {
	client  *redis.Client
	channel string
}

func NewRedisChannel(client *redis.Client, channel string) *RedisChannel {
	return &RedisChannel{client: client, channel: channel}
}

func (c *RedisChannel) Subscribe(ctx context.Context) (Subscription, error) {
	pubsub := c.client.Subscribe(ctx, c.channel)

	sub := &redisSubscription{
		pubsub:   pubsub,
		ready:    make(chan struct{}),
		messages: make(chan []byte),
		done:     make(chan struct{}),
	}

	go sub.receive(ctx)

	return sub, nil
}

type redisSubscription struct {
	pubsub   *redis.PubSub
	ready    chan struct{}
	messages chan []byte
	done     chan struct{}

	once sync.Once

	mu  sync.Mutex
	err error
}

func (s *redisSubscription) Ready() <-chan struct{} {
	return s.ready
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.messages
}

func (s *redisSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		close(s.done)
	})

	return s.pubsub.Close()
}

func (s *redisSubscription) receive(ctx context.Context) {
	defer close(s.messages)

	// The first Receive returns the *redis.Subscription confirmation.
	if _, err := s.pubsub.Receive(ctx); err != nil {
		s.fail(err)
		return
	}

	close(s.ready)

	for {
		msg, err := s.pubsub.ReceiveMessage(ctx)
		if err != nil {
			s.fail(err)
			return
		}

		select {
		case s.messages <- []byte(msg.Payload):
		case <-s.done:
			return
		case <-ctx.Done():
			s.fail(ctx.Err())
			return
		}
	}
}

func (s *redisSubscription) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}
