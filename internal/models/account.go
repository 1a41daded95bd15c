package models

import (
	"time"
)

// Account is a local account backed by a directory identity. Accounts are
// created on first successful login and updated whenever the directory
// profile changes.
type Account struct {
	ID string `gorm:"primaryKey;type:varchar(36)"`

	// ExternalID is the provider-prefixed stable identifier, e.g.
	// "LDAP-1000". The unique index is the synchronization primitive
	// protecting against duplicate creation under concurrent first-logins.
	ExternalID string `gorm:"uniqueIndex;not null"`

	// Username is the display username derived from the directory entry.
	// Not unique; the directory owns naming, not this store.
	Username string `gorm:"index;not null"`

	// Profile is the serialized identity snapshot from the last login.
	Profile string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}
