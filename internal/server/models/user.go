// Package models holds the server-side domain records.
package models

import "time"

// User is a stored account. PasswordHash is a bcrypt string and must never
// leave the server; use View for anything sent to clients.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// UserView is the sanitized projection of a User.
type UserView struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (u *User) View() UserView {
	return UserView{Username: u.UserName, IsAdmin: u.IsAdmin}
}

// Views projects a slice of users.
func Views(users []*User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out
}
