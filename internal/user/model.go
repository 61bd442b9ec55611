package user

import "time"

// User represents a registered driver account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Points       int       `json:"points"`
	Level        Level     `json:"level"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the (userId, username) pair returned by signup and login and
// persisted as the session's current user.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Identity returns the user's identity pair.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username}
}

// Public returns a copy with the password hash cleared.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
