// Package services contains the application services of the store admin
// client: authentication, the product list and product mutations, and the
// product editor state.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storeadmin/internal/client/client"
	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/nav"
	"github.com/dmitrijs2005/storeadmin/internal/client/notify"
	"github.com/dmitrijs2005/storeadmin/internal/client/validation"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
)

// ErrInvalidCredentials wraps every failed login or registration call.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrIncompleteAuth means the backend accepted the credentials but did not
// answer with both a user and a token.
var ErrIncompleteAuth = errors.New("auth response lacks user or token")

// SessionStore is the part of session.Store the services write to.
type SessionStore interface {
	Read() models.Session
	AccessToken() string
	Replace(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// Navigator is the part of nav.Router the auth flow drives.
type Navigator interface {
	Navigate(to nav.View, replace bool) nav.View
	Reset(to nav.View) nav.View
}

// AuthService signs users in and out.
//
// Contract:
//   - Login/Register: validate locally, call the backend, then replace the
//     session and land on the home view. A failed call, or an answer
//     missing the user or the token, leaves the session untouched.
//   - Logout: clear the session and reset navigation to the login view.
//     It makes no network call.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.Session, error)
	Register(ctx context.Context, in validation.RegisterInput) (models.Session, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	api      client.Client
	sessions SessionStore
	router   Navigator
	notifier notify.Notifier
	log      logging.Logger

	loginGuard    Guard
	registerGuard Guard
}

func NewAuthService(api client.Client, sessions SessionStore, router Navigator, notifier notify.Notifier, log logging.Logger) AuthService {
	return &authService{
		api:      api,
		sessions: sessions,
		router:   router,
		notifier: notifier,
		log:      log.With("component", "auth"),
	}
}

func (a *authService) Login(ctx context.Context, email, password string) (models.Session, error) {
	if err := validation.Login(email, password); err != nil {
		return models.Session{}, err
	}

	var out models.Session
	err := a.loginGuard.Do(func() error {
		resp, err := a.api.Login(ctx, email, password)
		if err == nil {
			err = checkAuthResponse(resp)
		}
		if err != nil {
			a.log.Info(ctx, "login rejected", "email", email, "error", err)
			a.notifier.Error(notify.MsgInvalidCredentials)
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		out, err = a.establish(ctx, resp)
		if err != nil {
			return err
		}
		a.notifier.Success(notify.MsgLoginSuccess)
		return nil
	})
	return out, err
}

func (a *authService) Register(ctx context.Context, in validation.RegisterInput) (models.Session, error) {
	if err := validation.Register(in); err != nil {
		return models.Session{}, err
	}

	var out models.Session
	err := a.registerGuard.Do(func() error {
		resp, err := a.api.Register(ctx, client.RegisterRequest{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			Password:  in.Password,
		})
		if err == nil {
			err = checkAuthResponse(resp)
		}
		if err != nil {
			a.log.Info(ctx, "registration rejected", "email", in.Email, "error", err)
			a.notifier.Error(notify.MsgSomethingWentWrong)
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		out, err = a.establish(ctx, resp)
		if err != nil {
			return err
		}
		a.notifier.Success(notify.MsgRegistrationSuccess)
		return nil
	})
	return out, err
}

func checkAuthResponse(resp client.AuthResponse) error {
	if resp.Token == "" || resp.User.Email == "" {
		return ErrIncompleteAuth
	}
	return nil
}

// establish stores the new session and moves to the home view, replacing
// the auth form in history so Back cannot return to it.
func (a *authService) establish(ctx context.Context, resp client.AuthResponse) (models.Session, error) {
	user := resp.User
	s := models.Session{User: &user, AccessToken: resp.Token}
	if err := a.sessions.Replace(ctx, s); err != nil {
		a.log.Error(ctx, "store session", "error", err)
		a.notifier.Error(notify.MsgSomethingWentWrong)
		return models.Session{}, err
	}
	a.log.Info(ctx, "signed in", "email", user.Email)
	a.router.Navigate(nav.ViewHome, true)
	return s, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.router.Reset(nav.ViewLogin)
	a.log.Info(ctx, "signed out")
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}
