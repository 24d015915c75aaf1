package nav

import (
	"sync"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
)

type View string

const (
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewHome     View = "home"
)

// Protected reports whether v requires a signed-in user.
func (v View) Protected() bool {
	return v == ViewHome
}

// SessionReader is the read side of the session store.
type SessionReader interface {
	Read() models.Session
}

// Router is a history stack of views. Every landing on a protected view,
// including one reached with Back, is re-checked against the current session.
type Router struct {
	sessions SessionReader

	mu      sync.Mutex
	history []View
}

func NewRouter(sessions SessionReader, start View) *Router {
	r := &Router{sessions: sessions}
	r.history = []View{r.guard(start)}
	return r
}

func (r *Router) guard(to View) View {
	if to.Protected() && Decide(r.sessions.Read()) == RedirectToLogin {
		return ViewLogin
	}
	return to
}

// Navigate moves to `to` (or to login when the gate refuses) and returns the
// view actually shown. With replace the current entry is overwritten instead
// of pushed.
func (r *Router) Navigate(to View, replace bool) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	landed := r.guard(to)
	if replace {
		r.history[len(r.history)-1] = landed
	} else {
		r.history = append(r.history, landed)
	}
	return landed
}

// Reset drops all history and starts over at `to`.
func (r *Router) Reset(to View) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	landed := r.guard(to)
	r.history = []View{landed}
	return landed
}

// Back pops one entry. The revealed view goes through the gate again.
func (r *Router) Back() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) > 1 {
		r.history = r.history[:len(r.history)-1]
	}
	top := len(r.history) - 1
	r.history[top] = r.guard(r.history[top])
	return r.history[top]
}

// Current re-evaluates the gate for the view on top of the stack, so a logout
// is noticed even without a navigation.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	top := len(r.history) - 1
	r.history[top] = r.guard(r.history[top])
	return r.history[top]
}

// History returns a copy of the stack, oldest first.
func (r *Router) History() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]View(nil), r.history...)
}
