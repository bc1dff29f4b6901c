// Package messaging defines the broker interfaces the schema service uses to
// take projection and validation jobs off a message bus.
package messaging

import (
	"context"
	"errors"
	"time"
)

// ErrNoReply is returned by Respond when the message carries no reply subject.
var ErrNoReply = errors.New("message has no reply subject")

// Message is a message received from or sent to a broker.
type Message struct {
	Subject string
	Data    []byte

	// Reply is set for request/reply; the receiver publishes its answer there.
	Reply string

	// Metadata holds message headers.
	Metadata map[string]string

	Timestamp time.Time
}

// MessageHandler processes a received message. A returned error is logged by
// the client; it does not trigger redelivery on core subjects.
type MessageHandler func(ctx context.Context, msg *Message) error

// Subscription is an active subscription to a subject.
type Subscription interface {
	Unsubscribe() error
	Subject() string
	IsValid() bool
}

// Publisher publishes messages to subjects.
type Publisher interface {
	// Publish is fire-and-forget; use Request for request/reply.
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishMsg sends a Message with headers.
	PublishMsg(ctx context.Context, msg *Message) error

	// Request sends data and waits up to timeout for a single response.
	Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error)

	Close() error
}

// Subscriber subscribes to messages on subjects.
type Subscriber interface {
	// Subscribe delivers every message on subject to handler (fan-out).
	Subscribe(subject string, handler MessageHandler) (Subscription, error)

	// QueueSubscribe load-balances messages across all subscribers sharing
	// the queue group, so each message is handled once.
	QueueSubscribe(subject, queue string, handler MessageHandler) (Subscription, error)

	Close() error
}

// Client combines Publisher and Subscriber.
type Client interface {
	Publisher
	Subscriber

	// Drain closes the connection after in-flight messages complete.
	Drain() error

	IsConnected() bool
}

// Respond publishes data to msg's reply subject.
func Respond(ctx context.Context, pub Publisher, msg *Message, data []byte) error {
	if msg.Reply == "" {
		return ErrNoReply
	}
	return pub.Publish(ctx, msg.Reply, data)
}
