// Package nav decides where the user may go. Decide is the auth gate; Router
// keeps the view history and consults the gate on every navigation.
package nav

import "github.com/dmitrijs2005/storeadmin/internal/client/models"

type Decision int

const (
	RedirectToLogin Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect-to-login"
}

// Decide lets a navigation to a protected view through only when the session
// has a user. It is pure: no I/O, no caching.
func Decide(s models.Session) Decision {
	if s.User != nil {
		return Allow
	}
	return RedirectToLogin
}
