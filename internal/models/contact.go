package models

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "Lifeline/pkg/errors"
)

// Contact is an emergency contact owned by a ContactList. Contacts have no
// identity of their own; the whole slice is serialized into its parent row.
type Contact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
	IsPrimary    bool   `json:"isPrimary"`
}

// ContactList holds the emergency contacts for one owner. One row per owner.
type ContactList struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OwnerID   string    `gorm:"uniqueIndex;size:64" json:"ownerId"`
	Contacts  []Contact `gorm:"serializer:json" json:"contacts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveContactList upserts the contact list for an owner: created if absent,
// otherwise the contacts are replaced wholesale and UpdatedAt bumped.
func SaveContactList(db *gorm.DB, ownerID string, contacts []Contact) (*ContactList, error) {
	var list ContactList
	err := db.Where("owner_id = ?", ownerID).First(&list).Error
	switch {
	case err == nil:
		list.Contacts = contacts
		err = db.Save(&list).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		list = ContactList{OwnerID: ownerID, Contacts: contacts}
		err = db.Create(&list).Error
	}
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to save contact list")
	}
	return &list, nil
}

// GetContactList returns the owner's contact list, or nil when none exists.
func GetContactList(db *gorm.DB, ownerID string) (*ContactList, error) {
	var list ContactList
	err := db.Where("owner_id = ?", ownerID).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to load contact list")
	}
	return &list, nil
}
