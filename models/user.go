package models

import (
	"strings"
	"time"
)

// User is an account that can author blog posts
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_users_email"`
	Username     *string   `json:"username,omitempty" gorm:"type:varchar(100)"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	IsActive     bool      `json:"isActive" gorm:"not null"`
	IsStaff      bool      `json:"isStaff" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null"`
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName prefers the username and falls back to the email.
func (u User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}

// CanModify reports whether u may edit or delete post: its author or any staff user.
func (u *User) CanModify(post *BlogPost) bool {
	if u == nil || post == nil {
		return false
	}
	return u.IsStaff || post.AuthorID == u.ID
}
