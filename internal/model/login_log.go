package model

import "time"

const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
)

type LoginLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"index"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Status    string    `json:"status"` // success, failed
	CreatedAt time.Time `json:"created_at"`
}
