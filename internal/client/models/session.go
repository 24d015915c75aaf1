// Package models defines client-side data models used by the storefront
// admin client.
package models

// Identity is the signed-in user's profile as returned by the backend.
// The client only keeps a read-only copy.
type Identity struct {
	ID        string `json:"_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// FullName joins first and last name, skipping empty parts.
func (i Identity) FullName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	default:
		return i.FirstName + " " + i.LastName
	}
}

// Session is the single live authentication state of the client.
//
// A nil User means "no user"; an empty AccessToken means "no token".
// Once a login completes both are set together, and logout clears both.
type Session struct {
	User        *Identity
	AccessToken string
}

// IsAuthenticated reports whether a user is present.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s Session) Clone() Session {
	out := Session{AccessToken: s.AccessToken}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// Equal compares two sessions by value.
func (s Session) Equal(other Session) bool {
	if s.AccessToken != other.AccessToken {
		return false
	}
	if s.User == nil || other.User == nil {
		return s.User == nil && other.User == nil
	}
	return *s.User == *other.User
}
