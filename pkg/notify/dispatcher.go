package notify

import (
	"context"
	"time"

	"fleetbook/pkg/kafka"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"
)

// Dispatcher hands a notification off for delivery. Implementations are
// invoked only after the booking transaction has committed; a returned
// error is logged by the caller, never propagated into the booking outcome.
type Dispatcher interface {
	Send(ctx context.Context, n model.Notification) error
}

type kafkaDispatcher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaDispatcher(producer *kafka.Producer, source string, log *logger.Logger) Dispatcher {
	return &kafkaDispatcher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (d *kafkaDispatcher) Send(ctx context.Context, n model.Notification) error {
	n.SentAt = time.Now().UTC()

	msg, err := kafka.NewMessage(n.BookingCode, string(n.Kind), d.source, n)
	if err != nil {
		return err
	}

	if err := d.producer.Publish(ctx, msg); err != nil {
		return err
	}

	d.log.Debug("Notification event published",
		"kind", n.Kind,
		"booking_code", n.BookingCode,
		"to", n.To,
	)
	return nil
}
