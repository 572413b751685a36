package models

import (
	"time"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Post struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	AuthorID      uint      `json:"authorId" gorm:"not null;index"`
	Author        Profile   `json:"-" gorm:"foreignKey:AuthorID"`
	Status        string    `json:"status" gorm:"not null;type:varchar(10)"`
	AllowComments bool      `json:"allowComments" gorm:"not null"`
	Comments      []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
	Likes         []Like    `json:"-" gorm:"foreignKey:PostID"`
}

func (p *Post) Published() bool {
	return p.Status == PostStatusPublished
}
