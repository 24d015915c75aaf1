// Package notify delivers short user-facing outcome messages, the terminal
// counterpart of toast notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/storeadmin/internal/logging"
)

const (
	MsgLoginSuccess        = "Login Success"
	MsgInvalidCredentials  = "Invalid Credentials"
	MsgRegistrationSuccess = "Registration Success"
	MsgProductCreated      = "Product Created 🎉"
	MsgProductUpdated      = "Product Updated 🎉"
	MsgProductDeleted      = "Product deleted successfully"
	MsgSomethingWentWrong  = "Something went wrong"
)

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Console prints notifications as marked lines and mirrors them to the log.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	log logging.Logger
}

func NewConsole(w io.Writer, log logging.Logger) *Console {
	return &Console{w: w, log: log.With("component", "notify")}
}

func (c *Console) Success(msg string) {
	c.print("✔", msg)
	c.log.Info(context.Background(), "notification", "kind", "success", "message", msg)
}

func (c *Console) Error(msg string) {
	c.print("✖", msg)
	c.log.Warn(context.Background(), "notification", "kind", "error", "message", msg)
}

func (c *Console) print(mark, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, "%s %s\n", mark, msg)
}

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Message struct {
	Kind Kind
	Text string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }

func (r *Recorder) Error(msg string) { r.add(KindError, msg) }

func (r *Recorder) add(k Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Kind: k, Text: msg})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return Message{}, false
	}
	return r.msgs[len(r.msgs)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
