package notifications

import (
	"context"

	"fleetbook/pkg/config"
	"fleetbook/pkg/kafka"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"
)

// Worker turns booking events from the notifications topic into emails.
// Delivery is best-effort end to end: a message that cannot be rendered
// or sent is logged and dropped rather than replayed, because nothing in
// the booking workflow depends on it.
type Worker struct {
	sender Sender
	log    *logger.Logger
}

func NewWorker(sender Sender, cfg *config.Config) *Worker {
	return &Worker{
		sender: sender,
		log:    cfg.Log,
	}
}

func (w *Worker) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var n model.Notification
	if err := msg.DecodeValue(&n); err != nil {
		w.log.Error("Notification event undecodable",
			"event_type", msg.EventType(),
			"key", msg.Key,
			"error", err,
		)
		return nil
	}

	if n.To == "" {
		w.log.Warn("Notification event has no recipient", "booking_code", n.BookingCode, "kind", n.Kind)
		return nil
	}

	subject, body, err := render(n)
	if err != nil {
		w.log.Error("Notification render failed",
			"booking_code", n.BookingCode,
			"kind", n.Kind,
			"error", err,
		)
		return nil
	}

	if err := w.sender.Send(n.To, subject, body); err != nil {
		w.log.Error("Notification delivery failed",
			"booking_code", n.BookingCode,
			"kind", n.Kind,
			"to", n.To,
			"error", err,
		)
		return nil
	}

	w.log.Info("Notification delivered",
		"booking_code", n.BookingCode,
		"kind", n.Kind,
		"to", n.To,
	)
	return nil
}
