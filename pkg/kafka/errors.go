package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("producer is closed")
	ErrConsumerClosed = errors.New("consumer is closed")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
	ErrEmptyBrokers   = errors.New("at least one broker is required")
	ErrEmptyTopic     = errors.New("topic cannot be empty")
	ErrNilHandler     = errors.New("message handler cannot be nil")
)
