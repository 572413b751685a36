package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Content   string    `json:"content" gorm:"size:255;not null"`
	AuthorID  uint      `json:"authorId" gorm:"not null"`
	Author    Profile   `json:"-" gorm:"foreignKey:AuthorID"`
	PostID    uint      `json:"postId" gorm:"not null;index"`
}
