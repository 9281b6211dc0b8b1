package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Lifeline/pkg/errors"
	"Lifeline/pkg/util"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.OpenDatabase(&gorm.Config{}, "", "")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&ContactList{}, &Alert{}))
	return db
}

func TestSaveContactListUpsert(t *testing.T) {
	db := openTestDB(t)

	first, err := SaveContactList(db, "u1", []Contact{{Name: "Ann", Phone: "9876543210", IsPrimary: true}})
	require.NoError(t, err)
	assert.Len(t, first.Contacts, 1)

	second, err := SaveContactList(db, "u1", []Contact{
		{Name: "Bob", Phone: "9123456780"},
		{Name: "Eve", Phone: "9000000001"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert must reuse the owner's row")
	assert.Len(t, second.Contacts, 2)

	loaded, err := GetContactList(db, "u1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Bob", loaded.Contacts[0].Name)
	assert.Equal(t, "Eve", loaded.Contacts[1].Name)

	var count int64
	require.NoError(t, db.Model(&ContactList{}).Where("owner_id = ?", "u1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetContactListAbsent(t *testing.T) {
	db := openTestDB(t)

	list, err := GetContactList(db, "nobody")
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestCreateAlertConflict(t *testing.T) {
	db := openTestDB(t)

	a := &Alert{OwnerID: "u1", TrackingCode: "EMERGENCY-1-AAAAA", Status: AlertStatusActive, AlertType: AlertTypeSOS}
	require.NoError(t, CreateAlert(db, a))
	assert.NotZero(t, a.ID)

	dup := &Alert{OwnerID: "u2", TrackingCode: "EMERGENCY-1-AAAAA", Status: AlertStatusActive, AlertType: AlertTypeSOS}
	err := CreateAlert(db, dup)
	assert.True(t, errors.IsConflict(err), "duplicate tracking code must be a conflict, got %v", err)
}

func TestGetAlertsByOwnerOrderAndLimit(t *testing.T) {
	db := openTestDB(t)

	base := time.Now().Add(-1 * time.Hour)
	for i := 0; i < 5; i++ {
		a := &Alert{
			OwnerID:      "u1",
			TrackingCode: fmt.Sprintf("EMERGENCY-%d-AAAAA", i),
			Status:       AlertStatusActive,
			AlertType:    AlertTypeSOS,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, CreateAlert(db, a))
	}

	alerts, err := GetAlertsByOwner(db, "u1", 3)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "EMERGENCY-4-AAAAA", alerts[0].TrackingCode, "newest first")
	assert.True(t, alerts[0].CreatedAt.After(alerts[1].CreatedAt))
}

func TestGetAlertByTrackingCode(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, CreateAlert(db, &Alert{OwnerID: "u1", TrackingCode: "EMERGENCY-2-BBBBB", Status: AlertStatusActive}))

	found, err := GetAlertByTrackingCode(db, "EMERGENCY-2-BBBBB")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.OwnerID)

	_, err = GetAlertByTrackingCode(db, "EMERGENCY-9-ZZZZZ")
	assert.True(t, errors.IsNotFound(err))
}

func TestResolveAlertTransition(t *testing.T) {
	db := openTestDB(t)

	a := &Alert{OwnerID: "u1", TrackingCode: "EMERGENCY-3-CCCCC", Status: AlertStatusActive}
	require.NoError(t, CreateAlert(db, a))

	resolved, transitioned, err := ResolveAlert(db, a.ID)
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, AlertStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolvedAt := *resolved.ResolvedAt

	again, transitioned, err := ResolveAlert(db, a.ID)
	require.NoError(t, err)
	assert.False(t, transitioned, "second resolve must not transition again")
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, firstResolvedAt.Unix(), again.ResolvedAt.Unix())
}

func TestResolveAlertNotFound(t *testing.T) {
	db := openTestDB(t)

	_, _, err := ResolveAlert(db, 999)
	assert.True(t, errors.IsNotFound(err))
}

func TestCountAlerts(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		a := &Alert{OwnerID: "u1", TrackingCode: fmt.Sprintf("EMERGENCY-C%d-AAAAA", i), Status: AlertStatusActive}
		require.NoError(t, CreateAlert(db, a))
		if i == 0 {
			_, _, err := ResolveAlert(db, a.ID)
			require.NoError(t, err)
		}
	}

	total, err := CountAlerts(db, "u1", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	active := AlertStatusActive
	activeCount, err := CountAlerts(db, "u1", &active)
	require.NoError(t, err)
	assert.EqualValues(t, 2, activeCount)

	resolved := AlertStatusResolved
	resolvedCount, err := CountAlerts(db, "u1", &resolved)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resolvedCount)
}

func TestNormalizeAlertType(t *testing.T) {
	assert.Equal(t, AlertTypeSOS, NormalizeAlertType(""))
	assert.Equal(t, AlertTypeMedical, NormalizeAlertType("medical"))
	assert.Equal(t, AlertTypeThreat, NormalizeAlertType("threat"))
	assert.Equal(t, AlertTypeOther, NormalizeAlertType("tsunami"))
}
