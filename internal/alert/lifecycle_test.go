package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Lifeline/internal/models"
	"Lifeline/pkg/errors"
	"Lifeline/pkg/notification"
	"Lifeline/pkg/util"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.OpenDatabase(&gorm.Config{}, "", "")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// keep the in-memory sqlite on a single connection
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.ContactList{}, &models.Alert{}))
	return db
}

func newTestLifecycle(t *testing.T, sender Sender) (*Lifecycle, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewLifecycle(db, NewDispatcher(context.Background(), sender, 0, zap.NewNop()), zap.NewNop()), db
}

func seedContacts(t *testing.T, db *gorm.DB, ownerID string, contacts []models.Contact) {
	t.Helper()
	_, err := models.SaveContactList(db, ownerID, contacts)
	require.NoError(t, err)
}

func TestTriggerSOSValidation(t *testing.T) {
	sender := &fakeSender{}
	lc, _ := newTestLifecycle(t, sender)

	_, err := lc.TriggerSOS(TriggerInput{Location: &models.Location{Lat: 1, Lng: 2}})
	assert.Equal(t, errors.CodeValidation, errors.GetCode(err))

	_, err = lc.TriggerSOS(TriggerInput{OwnerID: "u1"})
	assert.Equal(t, errors.CodeValidation, errors.GetCode(err))

	assert.Empty(t, sender.calls, "validation failure must not send anything")
}

func TestTriggerSOSNoContacts(t *testing.T) {
	sender := &fakeSender{}
	lc, db := newTestLifecycle(t, sender)

	// absent contact list
	_, err := lc.TriggerSOS(TriggerInput{OwnerID: "u1", Location: &models.Location{Lat: 1, Lng: 2}})
	assert.Equal(t, errors.CodeNoContacts, errors.GetCode(err))

	// empty contact list
	seedContacts(t, db, "u1", []models.Contact{})
	_, err = lc.TriggerSOS(TriggerInput{OwnerID: "u1", Location: &models.Location{Lat: 1, Lng: 2}})
	assert.Equal(t, errors.CodeNoContacts, errors.GetCode(err))

	assert.Empty(t, sender.calls, "no-contacts failure must not send anything")
}

func TestTriggerSOSHappyPath(t *testing.T) {
	sender := &fakeSender{}
	lc, db := newTestLifecycle(t, sender)
	seedContacts(t, db, "u1", []models.Contact{
		{Name: "Ann", Phone: "9876543210", IsPrimary: true},
		{Name: "Bob", Phone: "9123456780"},
	})

	res, err := lc.TriggerSOS(TriggerInput{
		OwnerID:   "u1",
		Location:  &models.Location{Lat: 12.9, Lng: 77.6},
		OwnerName: "Carol",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^EMERGENCY-[A-Z0-9]+-[A-Z0-9]{5}$`, res.TrackingCode)
	assert.Equal(t, DispatchStats{Sent: 2, Failed: 0, Total: 2}, res.Stats)
	assert.Equal(t, "https://www.google.com/maps?q=12.9,77.6", res.MapLink)
	assert.Len(t, sender.calls, 2)
	assert.Contains(t, sender.bodies[0], res.TrackingCode)

	stored, err := models.GetAlertByTrackingCode(db, res.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusActive, stored.Status)
	assert.Len(t, stored.DeliveryLedger, 2)
	assert.Equal(t, "Ann", stored.DeliveryLedger[0].Name)
	assert.Equal(t, "Bob", stored.DeliveryLedger[1].Name)
}

func TestTriggerSOSPartialFailureIsSuccess(t *testing.T) {
	sender := &fakeSender{failPhones: map[string]bool{"9123456780": true}}
	lc, db := newTestLifecycle(t, sender)
	seedContacts(t, db, "u1", []models.Contact{
		{Name: "Ann", Phone: "9876543210"},
		{Name: "Bob", Phone: "9123456780"},
	})

	res, err := lc.TriggerSOS(TriggerInput{OwnerID: "u1", Location: &models.Location{Lat: 1, Lng: 2}})
	require.NoError(t, err, "per-contact provider failure must not fail the trigger")
	assert.Equal(t, DispatchStats{Sent: 1, Failed: 1, Total: 2}, res.Stats)

	stored, err := models.GetAlertByTrackingCode(db, res.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusFailed, stored.DeliveryLedger[1].DeliveryStatus)
	assert.NotEmpty(t, stored.DeliveryLedger[1].Error)
}

func TestResolveNotifiesOnlyCurrentPrimaries(t *testing.T) {
	sender := &fakeSender{}
	lc, db := newTestLifecycle(t, sender)
	seedContacts(t, db, "u1", []models.Contact{
		{Name: "Ann", Phone: "9876543210", IsPrimary: true},
		{Name: "Bob", Phone: "9123456780"},
	})

	res, err := lc.TriggerSOS(TriggerInput{OwnerID: "u1", Location: &models.Location{Lat: 1, Lng: 2}})
	require.NoError(t, err)
	triggerSends := len(sender.calls)

	// the primary set is evaluated live at resolve time
	seedContacts(t, db, "u1", []models.Contact{
		{Name: "Ann", Phone: "9876543210"},
		{Name: "Bob", Phone: "9123456780", IsPrimary: true},
		{Name: "Eve", Phone: "9000000001", IsPrimary: true},
	})

	resolved, err := lc.Resolve(res.Alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusResolved, resolved.Alert.Status)
	require.NotNil(t, resolved.Alert.ResolvedAt)
	assert.Equal(t, DispatchStats{Sent: 2, Failed: 0, Total: 2}, resolved.Notified)

	resolveCalls := sender.calls[triggerSends:]
	assert.Equal(t, []string{"9123456780", "9000000001"}, resolveCalls)
}

func TestResolveTwiceKeepsFirstResolutionTime(t *testing.T) {
	sender := &fakeSender{}
	lc, db := newTestLifecycle(t, sender)
	seedContacts(t, db, "u1", []models.Contact{{Name: "Ann", Phone: "9876543210", IsPrimary: true}})

	res, err := lc.TriggerSOS(TriggerInput{OwnerID: "u1", Location: &models.Location{Lat: 1, Lng: 2}})
	require.NoError(t, err)

	first, err := lc.Resolve(res.Alert.ID)
	require.NoError(t, err)
	callsAfterFirst := len(sender.calls)

	second, err := lc.Resolve(res.Alert.ID)
	require.NoError(t, err)

	assert.Equal(t, models.AlertStatusResolved, second.Alert.Status)
	assert.Equal(t, first.Alert.ResolvedAt.Unix(), second.Alert.ResolvedAt.Unix())
	assert.Equal(t, DispatchStats{}, second.Notified)
	assert.Equal(t, callsAfterFirst, len(sender.calls), "second resolve must not send again")
}

// The stored CreatedAt must be the time advertised in the composed message,
// captured before dispatch, not a store timestamp taken after the paced
// sends finished.
func TestTriggerSOSCreatedAtPrecedesDispatch(t *testing.T) {
	slow := senderFunc(func(context.Context, string, string) notification.Outcome {
		time.Sleep(80 * time.Millisecond)
		return notification.Outcome{Status: notification.StatusSent, ProviderID: "SM1"}
	})
	db := newTestDB(t)
	lc := NewLifecycle(db, NewDispatcher(context.Background(), slow, 0, zap.NewNop()), zap.NewNop())
	seedContacts(t, db, "u1", []models.Contact{
		{Name: "Ann", Phone: "9876543210"},
		{Name: "Bob", Phone: "9123456780"},
	})

	start := time.Now()
	res, err := lc.TriggerSOS(TriggerInput{OwnerID: "u1", Location: &models.Location{Lat: 1, Lng: 2}})
	require.NoError(t, err)

	stored, err := models.GetAlertByTrackingCode(db, res.TrackingCode)
	require.NoError(t, err)
	// both sends together take ~160ms; a post-dispatch stamp would land
	// well past this bound
	assert.WithinDuration(t, start, stored.CreatedAt, 60*time.Millisecond)
	assert.False(t, stored.CreatedAt.After(stored.DeliveryLedger[0].SentAt))
}

func TestResolveUnknownAlert(t *testing.T) {
	sender := &fakeSender{}
	lc, _ := newTestLifecycle(t, sender)

	_, err := lc.Resolve(4242)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, sender.calls)
}
