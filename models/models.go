package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a regular user in the system. Account management lives
// outside this service; users are only resolved here for payment intents
// and JWT auth.
type User struct {
	gorm.Model
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	StudentID   string    `json:"student_id"`
	IsBlocked   bool      `json:"is_blocked"`
	LastLoginAt time.Time `json:"last_login_at"`
}
