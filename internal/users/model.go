package users

import "time"

// User is an account that can sign in to the admin area.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"isAdmin"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the user can sign in with a password.
func (u User) HasPassword() bool {
	return len(u.PasswordHash) > 0 && len(u.PasswordSalt) > 0
}
