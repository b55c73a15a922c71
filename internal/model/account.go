package model

import (
	"time"
)

// Account is a user created by redeeming a license. LicenseKey is a copy of the
// redeemed key and never changes; ExpiryDate starts as the license's expiry and is
// owned by the account from then on.
type Account struct {
	ID         uint       `json:"-" gorm:"primaryKey"`
	Username   string     `json:"username" gorm:"uniqueIndex;not null"`
	Credential string     `json:"-" gorm:"not null"`
	Email      string     `json:"email"`
	LicenseKey string     `json:"license_key" gorm:"index;not null"`
	ExpiryDate time.Time  `json:"expiry_date" gorm:"not null"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Expired reports whether the account's expiry date lies before the calendar
// day containing now.
func (a *Account) Expired(now time.Time) bool {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return a.ExpiryDate.UTC().Before(today)
}
