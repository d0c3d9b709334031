package model

import "time"

// Identity is the signed-in provider as reported by the identity backend.
// UID scopes every document the provider owns.
type Identity struct {
	UID         string
	Email       string
	DisplayName string

	// Token is the backend's own credential (a Firebase ID token for the
	// firebase backend). It is only needed for calls made right after
	// sign-up and is never written to the session cookie.
	Token string `json:"-"`
}

// Name returns the display name, or the email when no name was set.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}

// User mirrors a row of the `users` table used by the self-hosted
// identity backend.
//
// Fields:
//
//	UID          – users.uid, a random UUID shared with provider documents.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash.
//	DisplayName  – optional company or contact name.
type User struct {
	UID          string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity projects the row to the identity handed to the rest of the app.
func (u User) Identity() Identity {
	return Identity{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName}
}
