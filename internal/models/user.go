package models

import "time"

// User represents a blog account. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profile_img"`
	CreatedAt    time.Time `json:"joinedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitize returns a copy of the user without sensitive fields populated.
func (u User) Sanitize() User {
	u.PasswordHash = ""
	return u
}
