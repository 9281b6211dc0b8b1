package alert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Lifeline/internal/models"
	"Lifeline/pkg/metrics"
	"Lifeline/pkg/notification"
)

// DefaultPacing is the inter-send delay that keeps the provider's rate
// limits happy.
const DefaultPacing = 1 * time.Second

// Sender is the capability the dispatcher needs from the notification
// channel.
type Sender interface {
	Send(ctx context.Context, phone, body string) notification.Outcome
}

// Dispatcher fans one message body out to a contact list, strictly
// sequentially and in list order, so the provider sees a paced stream and
// the ledger ordering is reproducible. It is bound to the process lifetime
// context at construction: request contexts never reach the pacing loop, so
// a caller disconnect cannot collapse the inter-send delay.
type Dispatcher struct {
	lifetime context.Context
	sender   Sender
	pace     time.Duration
	log      *zap.Logger
}

func NewDispatcher(lifetime context.Context, sender Sender, pace time.Duration, log *zap.Logger) *Dispatcher {
	if lifetime == nil {
		lifetime = context.Background()
	}
	if pace < 0 {
		pace = DefaultPacing
	}
	return &Dispatcher{lifetime: lifetime, sender: sender, pace: pace, log: log}
}

// Dispatch sends body to every contact and returns one DeliveryRecord per
// contact plus sent/failed totals. A failed send never aborts the remaining
// contacts. The pacing delay watches only the process lifetime context, so
// shutdown is not held up; once started a dispatch always works through the
// whole contact list, and the sends themselves are never cancelled.
func (d *Dispatcher) Dispatch(contacts []models.Contact, body string) ([]models.DeliveryRecord, int, int) {
	records := make([]models.DeliveryRecord, 0, len(contacts))
	var sent, failed int

	sendCtx := context.WithoutCancel(d.lifetime)
	for i, contact := range contacts {
		outcome := d.sender.Send(sendCtx, contact.Phone, body)
		records = append(records, models.DeliveryRecord{
			Name:              contact.Name,
			Phone:             contact.Phone,
			DeliveryStatus:    models.DeliveryStatus(outcome.Status),
			ProviderMessageID: outcome.ProviderID,
			SentAt:            time.Now(),
			Error:             outcome.Error,
		})
		metrics.NotificationsTotal.WithLabelValues(string(outcome.Status)).Inc()

		switch outcome.Status {
		case notification.StatusFailed:
			failed++
			d.log.Warn("notification failed",
				zap.String("contact", contact.Name),
				zap.String("error", outcome.Error))
		default: // sent and simulated both count as delivered
			sent++
		}

		if i < len(contacts)-1 && d.pace > 0 && d.lifetime.Err() == nil {
			select {
			case <-d.lifetime.Done():
				// Shutdown requested: skip the remaining delays but keep
				// sending so the ledger stays complete.
				d.log.Warn("pacing interrupted, finishing dispatch without delay")
			case <-time.After(d.pace):
			}
		}
	}
	return records, sent, failed
}
