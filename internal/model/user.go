// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the public account record. This is what a session holds and what
// gets persisted with the auth state.
//
// NO PASSWORD HERE:
// The credential lives only on Account (below), inside the directory. A User can
// be serialized, logged, or returned to a client without leaking it.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Phone         string    `json:"phone,omitempty"`
	Avatar        string    `json:"avatar,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	EmailVerified bool      `json:"emailVerified"`
}

// Account is a directory entry: the user record plus its credential.
// This is a mock directory, so the password is plaintext.
type Account struct {
	User
	Password string `json:"-"`
}

// SignupData is the input to signup.
type SignupData struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// ProfileUpdate carries the profile fields a user may change.
// A nil field means "leave as is".
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// Apply merges the non-nil fields into u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

// AuthState is everything the auth store owns.
//
// Only User and IsAuthenticated are persisted. IsLoading describes an in-flight
// request of THIS process, so it always restarts false.
type AuthState struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
	IsLoading       bool  `json:"-"`
}
