package models

import (
	"time"
)

// Profile is the social-graph node of one account. Followers are the Follow
// rows whose ProfileID points at this profile.
type Profile struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `gorm:"size:50" json:"bio"`
	// Private has no column default: gorm would replace an explicit false
	// with it on insert. NewProfile sets the true default instead.
	Private   bool      `gorm:"not null" json:"private"`
}

func NewProfile(userID uint) *Profile {
	return &Profile{UserID: userID, Private: true}
}

func (p *Profile) Username() string {
	return p.User.Username
}
