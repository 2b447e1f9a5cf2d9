// Package mq publishes JSON messages to a message broker.
package mq

import "context"

// Publisher sends one JSON-encoded message under a routing key.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}
