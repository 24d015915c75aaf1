// Package session owns the client's single live authentication state and its
// durable mirror in the local metadata table.
//
// The Store is created once at start-up and injected into every component
// that needs the current identity or bearer token. Writers (login, register,
// logout) go through Replace/Clear; readers call Read or subscribe to changes.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Durable keys. Both absent means logged out.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

var errMalformedUser = errors.New("malformed user record")

// ErrPartialSession is returned by Replace for a session that carries a user
// without a token or a token without a user.
var ErrPartialSession = errors.New("session needs both user and token")

type Store struct {
	db  *sql.DB
	log logging.Logger

	// writeMu serialises Replace: durable write and memory swap happen as one step.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current models.Session

	subMu  sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(models.Session)
}

// New builds the store and rehydrates it from durable storage. Problems while
// reading or parsing the stored identity are logged and degrade to "no user";
// they are never returned.
func New(ctx context.Context, db *sql.DB, log logging.Logger) *Store {
	s := &Store{db: db, log: log.With("component", "session")}
	s.current = s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) models.Session {
	repo := metadata.NewSQLiteRepository(s.db)
	var out models.Session

	raw, err := repo.Get(ctx, KeyUser)
	if err != nil {
		s.log.Error(ctx, "read stored user", "error", err)
	} else if raw != nil {
		user, err := decodeUser(raw)
		if err != nil {
			s.log.Warn(ctx, "stored user ignored", "error", err)
		} else {
			out.User = user
		}
	}

	token, err := repo.Get(ctx, KeyToken)
	if err != nil {
		s.log.Error(ctx, "read stored token", "error", err)
	} else if token != nil {
		out.AccessToken = string(token)
	}

	return out
}

func decodeUser(raw []byte) (*models.Identity, error) {
	var user *models.Identity
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedUser, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: null", errMalformedUser)
	}
	return user, nil
}

// Read returns a copy of the current session. It never touches storage.
func (s *Store) Read() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// AccessToken returns the bearer token or "" when absent.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

// Replace persists next to durable storage in one transaction and then makes
// it the in-memory session. Concurrent calls do not interleave; the last to
// finish wins as a whole. On a storage error the in-memory session is kept.
// next must be either empty or carry both a user and a token.
func (s *Store) Replace(ctx context.Context, next models.Session) error {
	if (next.User == nil) != (next.AccessToken == "") {
		return ErrPartialSession
	}
	next = next.Clone()

	s.writeMu.Lock()
	err := metadata.WithTx(ctx, s.db, func(ctx context.Context, repo metadata.Repository) error {
		if next.User != nil {
			raw, err := json.Marshal(next.User)
			if err != nil {
				return err
			}
			if err := repo.Set(ctx, KeyUser, raw); err != nil {
				return err
			}
		} else if err := repo.Delete(ctx, KeyUser); err != nil {
			return err
		}

		if next.AccessToken != "" {
			return repo.Set(ctx, KeyToken, []byte(next.AccessToken))
		}
		return repo.Delete(ctx, KeyToken)
	})
	if err != nil {
		s.writeMu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.notify()
	return nil
}

// Clear drops the session and removes both durable keys.
func (s *Store) Clear(ctx context.Context) error {
	return s.Replace(ctx, models.Session{})
}

// Subscribe registers fn to be called with every new session. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(models.Session)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// notify hands every subscriber the session as it is now, so a late
// notification from a racing Replace never reports a superseded value.
func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(s.Read())
	}
}

// Expiry reads the "exp" claim of the access token without verifying the
// signature. ok is false when there is no token or it carries no expiry.
func (s *Store) Expiry() (exp time.Time, ok bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
