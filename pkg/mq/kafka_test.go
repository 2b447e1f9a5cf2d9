package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "topic")
	assert.Error(t, err)

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "shift.notifications")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*AMQPPublisher)(nil)
)
