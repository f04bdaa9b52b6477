package models

import (
	"strings"
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Subscription is a (subscriber, author) presence record.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriptions_subscriber_author" json:"subscriber_id"`
	AuthorID     uint      `gorm:"not null;uniqueIndex:idx_subscriptions_subscriber_author;index" json:"author_id"`
	Subscriber   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Author       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
