package models

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "Lifeline/pkg/errors"
)

type AlertType string

const (
	AlertTypeSOS      AlertType = "sos"
	AlertTypeAccident AlertType = "accident"
	AlertTypeMedical  AlertType = "medical"
	AlertTypeThreat   AlertType = "threat"
	AlertTypeOther    AlertType = "other"
)

type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
)

type DeliveryStatus string

const (
	DeliveryStatusSent      DeliveryStatus = "sent"
	DeliveryStatusSimulated DeliveryStatus = "simulated"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeliveryRecord captures the outcome of one notification send. Records are
// appended once when the alert is created and never updated afterwards.
type DeliveryRecord struct {
	Name              string         `json:"name"`
	Phone             string         `json:"phone"`
	DeliveryStatus    DeliveryStatus `json:"deliveryStatus"`
	ProviderMessageID string         `json:"providerMessageId,omitempty"`
	SentAt            time.Time      `json:"sentAt"`
	Error             string         `json:"error,omitempty"`
}

// Alert is one triggered SOS with its delivery ledger. TrackingCode is the
// externally shareable identifier and is unique for the life of the system.
type Alert struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	OwnerID        string           `gorm:"index;size:64" json:"ownerId"`
	TrackingCode   string           `gorm:"uniqueIndex;size:40" json:"trackingCode"`
	Location       Location         `gorm:"embedded;embeddedPrefix:loc_" json:"location"`
	Message        string           `json:"message"`
	AlertType      AlertType        `gorm:"size:16" json:"alertType"`
	Status         AlertStatus      `gorm:"size:16;index" json:"status"`
	DeliveryLedger []DeliveryRecord `gorm:"serializer:json" json:"deliveryLedger"`
	OwnerName      string           `json:"ownerName,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"-"`
	ResolvedAt     *time.Time       `json:"resolvedAt,omitempty"`
}

// NormalizeAlertType maps free-form input onto the known alert types.
// An empty value defaults to sos, anything unrecognized becomes other.
func NormalizeAlertType(s string) AlertType {
	switch AlertType(s) {
	case AlertTypeSOS, AlertTypeAccident, AlertTypeMedical, AlertTypeThreat, AlertTypeOther:
		return AlertType(s)
	case "":
		return AlertTypeSOS
	}
	return AlertTypeOther
}

// CreateAlert persists a new alert. A tracking code clash surfaces as a
// conflict error so the caller can regenerate and retry.
func CreateAlert(db *gorm.DB, alert *Alert) error {
	if err := db.Create(alert).Error; err != nil {
		var existing Alert
		if lookupErr := db.Where("tracking_code = ?", alert.TrackingCode).First(&existing).Error; lookupErr == nil {
			return apperrors.Conflict("tracking code %s already exists", alert.TrackingCode)
		}
		return apperrors.Persistence(err, "failed to create alert")
	}
	return nil
}

// GetAlertsByOwner returns the owner's alerts, newest first.
func GetAlertsByOwner(db *gorm.DB, ownerID string, limit int) ([]Alert, error) {
	var alerts []Alert
	q := db.Where("owner_id = ?", ownerID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&alerts).Error; err != nil {
		return nil, apperrors.Persistence(err, "failed to list alerts")
	}
	return alerts, nil
}

// GetAlertByTrackingCode looks up one alert by its shareable code.
func GetAlertByTrackingCode(db *gorm.DB, code string) (*Alert, error) {
	var alert Alert
	err := db.Where("tracking_code = ?", code).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("no alert with tracking code %s", code)
	}
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to load alert")
	}
	return &alert, nil
}

// GetAlertByID looks up one alert by store id.
func GetAlertByID(db *gorm.DB, id uint) (*Alert, error) {
	var alert Alert
	err := db.First(&alert, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("no alert with id %d", id)
	}
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to load alert")
	}
	return &alert, nil
}

// ResolveAlert transitions an alert from active to resolved with a guarded
// update, so concurrent resolves of the same alert transition at most once.
// The returned flag reports whether this call performed the transition; when
// false the alert was already resolved and keeps its original ResolvedAt.
func ResolveAlert(db *gorm.DB, id uint) (*Alert, bool, error) {
	now := time.Now()
	res := db.Model(&Alert{}).
		Where("id = ? AND status = ?", id, AlertStatusActive).
		Updates(map[string]interface{}{"status": AlertStatusResolved, "resolved_at": now})
	if res.Error != nil {
		return nil, false, apperrors.Persistence(res.Error, "failed to resolve alert")
	}
	alert, err := GetAlertByID(db, id)
	if err != nil {
		return nil, false, err
	}
	return alert, res.RowsAffected == 1, nil
}

// CountAlerts counts the owner's alerts, optionally filtered by status.
func CountAlerts(db *gorm.DB, ownerID string, status *AlertStatus) (int64, error) {
	var n int64
	q := db.Model(&Alert{}).Where("owner_id = ?", ownerID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, apperrors.Persistence(err, "failed to count alerts")
	}
	return n, nil
}
