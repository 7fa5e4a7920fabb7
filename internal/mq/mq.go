package mq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// userEventsChannel is the queue/topic carrying user lifecycle events.
const userEventsChannel = "user-events"

// User lifecycle event actions.
const (
	ActionUserCreated = "user.created"
	ActionUserUpdated = "user.updated"
	ActionUserDeleted = "user.deleted"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// UserEvent is the payload published on user lifecycle changes.
type UserEvent struct {
	Action string    `json:"action"`
	UserID int       `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// Publisher publishes user lifecycle events to the configured backend.
// A nil Publisher drops events, so deployments without a broker need no
// special-casing at call sites.
type Publisher struct {
	backend Backend
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(backend Backend) *Publisher {
	return &Publisher{backend: backend}
}

// PublishUserEvent sends a lifecycle event for the given user.
func (p *Publisher) PublishUserEvent(ctx context.Context, action string, userID int, email string) (string, error) {
	if p == nil || p.backend == nil {
		return "", nil
	}

	event := UserEvent{
		Action: action,
		UserID: userID,
		Email:  email,
		At:     time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	attrs := map[string]string{
		"action":  action,
		"user_id": strconv.Itoa(userID),
	}
	return p.backend.Publish(ctx, userEventsChannel, data, attrs)
}

// SubscribeUserEvents consumes user lifecycle events. Intended for
// downstream workers; the API server itself only publishes.
func (p *Publisher) SubscribeUserEvents(ctx context.Context, handler Handler) error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Subscribe(ctx, userEventsChannel, handler)
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
