package models

import (
	"time"
)

// User is the account owned by the external account service. Only the fields
// the social graph needs to resolve identities are mapped here.
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	IsActive  bool      `json:"is_active"`
}
