package alert

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Lifeline/internal/models"
	"Lifeline/pkg/errors"
	"Lifeline/pkg/metrics"
)

// Lifecycle orchestrates an alert from trigger to resolution: precondition
// checks, tracking-code generation, message composition, dispatch, and the
// one-way active→resolved transition.
type Lifecycle struct {
	db         *gorm.DB
	dispatcher *Dispatcher
	log        *zap.Logger
}

func NewLifecycle(db *gorm.DB, dispatcher *Dispatcher, log *zap.Logger) *Lifecycle {
	return &Lifecycle{db: db, dispatcher: dispatcher, log: log}
}

// TriggerInput is everything a caller supplies to raise an alert.
type TriggerInput struct {
	OwnerID   string
	Location  *models.Location
	Message   string
	AlertType string
	OwnerName string
}

// DispatchStats is the per-status accounting a trigger returns. Partial
// failure is a success path: the caller always gets counts, never an error,
// for individual provider failures.
type DispatchStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// TriggerResult summarizes a successful trigger.
type TriggerResult struct {
	TrackingCode string        `json:"trackingCode"`
	Stats        DispatchStats `json:"stats"`
	MapLink      string        `json:"mapLink"`
	Alert        *models.Alert `json:"-"`
}

// ResolveResult is the outcome of a resolve call. Notified counts the
// resolution notifications dispatched to primary contacts; it is zero when
// the alert was already resolved.
type ResolveResult struct {
	Alert    *models.Alert `json:"alert"`
	Notified DispatchStats `json:"notified"`
}

// TriggerSOS raises a new alert for the owner and notifies every registered
// contact. Once dispatch starts it runs to completion and the alert is
// persisted exactly once at the end, ledger included. There is deliberately
// no request context here: caller-side timeouts must not cancel a dispatch.
func (l *Lifecycle) TriggerSOS(in TriggerInput) (*TriggerResult, error) {
	if in.OwnerID == "" {
		return nil, errors.Validation("ownerId is required")
	}
	if in.Location == nil {
		return nil, errors.Validation("location coordinates are required")
	}

	list, err := models.GetContactList(l.db, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if list == nil || len(list.Contacts) == 0 {
		return nil, errors.NoContacts(in.OwnerID)
	}

	trackingCode := NewTrackingCode()
	createdAt := time.Now()
	alertType := models.NormalizeAlertType(in.AlertType)
	body := ComposeAlert(in.OwnerName, *in.Location, alertType, in.Message, trackingCode, createdAt)

	l.log.Info("dispatching sos alert",
		zap.String("ownerId", in.OwnerID),
		zap.String("trackingCode", trackingCode),
		zap.Int("contacts", len(list.Contacts)))

	records, sent, failed := l.dispatcher.Dispatch(list.Contacts, body)

	a := &models.Alert{
		OwnerID:        in.OwnerID,
		TrackingCode:   trackingCode,
		Location:       *in.Location,
		Message:        in.Message,
		AlertType:      alertType,
		Status:         models.AlertStatusActive,
		DeliveryLedger: records,
		OwnerName:      in.OwnerName,
		// the time advertised in the composed message, not the time the
		// paced dispatch finished
		CreatedAt: createdAt,
	}
	if err := models.CreateAlert(l.db, a); err != nil {
		if !errors.IsConflict(err) {
			return nil, err
		}
		// Same-millisecond collision on the tracking code. Regenerate once;
		// a second clash is a fatal internal error.
		l.log.Warn("tracking code collision, regenerating", zap.String("trackingCode", trackingCode))
		a.ID = 0
		a.TrackingCode = NewTrackingCode()
		if err := models.CreateAlert(l.db, a); err != nil {
			if errors.IsConflict(err) {
				return nil, errors.Persistence(err, "repeated tracking code collision")
			}
			return nil, err
		}
	}

	metrics.AlertsTriggered.Inc()
	return &TriggerResult{
		TrackingCode: a.TrackingCode,
		Stats:        DispatchStats{Sent: sent, Failed: failed, Total: len(records)},
		MapLink:      MapLink(*in.Location),
		Alert:        a,
	}, nil
}

// Resolve transitions the alert to resolved and, when this call performed
// the transition, sends a best-effort all-clear to the contacts currently
// flagged primary. The primary set is read live, not from the ledger
// snapshot. Notification failures degrade the result, never the resolve.
func (l *Lifecycle) Resolve(alertID uint) (*ResolveResult, error) {
	a, transitioned, err := models.ResolveAlert(l.db, alertID)
	if err != nil {
		return nil, err
	}
	result := &ResolveResult{Alert: a}
	if !transitioned {
		// Already resolved: keep the first resolution time, send nothing.
		return result, nil
	}
	metrics.AlertsResolved.Inc()

	list, err := models.GetContactList(l.db, a.OwnerID)
	if err != nil {
		l.log.Warn("resolution notification skipped", zap.Uint("alertId", alertID), zap.Error(err))
		return result, nil
	}
	var primaries []models.Contact
	if list != nil {
		for _, c := range list.Contacts {
			if c.IsPrimary {
				primaries = append(primaries, c)
			}
		}
	}
	if len(primaries) == 0 {
		return result, nil
	}

	body := ComposeResolution(a.TrackingCode, *a.ResolvedAt)
	_, sent, failed := l.dispatcher.Dispatch(primaries, body)
	result.Notified = DispatchStats{Sent: sent, Failed: failed, Total: len(primaries)}
	return result, nil
}
