package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cineclic-tui/model"
)

// Client publishes seat intents and opens per-screening subscriptions.
// Each Client carries a unique identity so its own publishes can be
// recognized and dropped when they echo back on the subscription.
type Client struct {
	rdb      *redis.Client
	clientID string
}

func NewClient(addr string, password string, db int) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		clientID: uuid.NewString(),
	}
}

func (c *Client) ClientID() string {
	return c.clientID
}

// PublishSelect broadcasts that this client is holding a seat.
func (c *Client) PublishSelect(ctx context.Context, screeningID int64, seat model.SeatRef) error {
	return c.publish(ctx, Message{
		Type:        TypeSelect,
		ScreeningID: screeningID,
		Seat:        seat,
		State:       "selected",
		ClientID:    c.clientID,
	})
}

// PublishDeselect broadcasts that this client released a seat.
func (c *Client) PublishDeselect(ctx context.Context, screeningID int64, seat model.SeatRef) error {
	return c.publish(ctx, Message{
		Type:        TypeDeselect,
		ScreeningID: screeningID,
		Seat:        seat,
		State:       "available",
		ClientID:    c.clientID,
	})
}

func (c *Client) publish(ctx context.Context, m Message) error {
	payload, err := encodeMessage(m)
	if err != nil {
		return err
	}
	if err := c.rdb.Publish(ctx, Topic(m.ScreeningID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", m.Type, err)
	}
	return nil
}

// Subscribe opens the seat-event stream for one screening. The returned
// subscription must be closed on every exit path from the seat-map screen;
// a live subscription outliving the screen is a leak.
func (c *Client) Subscribe(ctx context.Context, screeningID int64) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, Topic(screeningID))
	// Force the SUBSCRIBE round trip so a dead broker fails here, not on
	// the first receive.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Topic(screeningID), err)
	}

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan Message, 32),
	}
	go sub.pump(c.clientID)
	return sub, nil
}

// Subscription is one screening's live seat-event stream.
type Subscription struct {
	pubsub    *redis.PubSub
	events    chan Message
	closeOnce sync.Once
}

// Events delivers decoded messages in receipt order. The channel closes
// when the subscription is closed or the underlying stream drops.
func (s *Subscription) Events() <-chan Message {
	return s.events
}

// Close releases the subscription. It is safe to call from any exit path,
// any number of times.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}

func (s *Subscription) pump(ownID string) {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		m, err := decodeMessage(msg.Payload)
		if err != nil {
			continue
		}
		if ownID != "" && m.ClientID == ownID {
			continue
		}
		s.events <- m
	}
}
