// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. PasswordHash is nil for accounts created through an
// external identity provider; GoogleID is nil for password accounts.
type User struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        *string    `json:"-"`
	GoogleID            *string    `json:"-"`
	Role                string     `json:"role"`
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// Profile is the public view of a User.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the public view of u.
func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
