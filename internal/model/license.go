package model

import (
	"time"
)

// License is a one-time token granting the right to create one account.
// Used flips from false to true exactly once, when an account is created from it.
type License struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	Key        string    `json:"license_key" gorm:"column:license_key;uniqueIndex;not null"`
	ExpiryDate time.Time `json:"expiry_date" gorm:"not null"`
	Used       bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
