package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storeadmin/internal/client/nav"
	"github.com/dmitrijs2005/storeadmin/internal/client/validation"
	"github.com/dmitrijs2005/storeadmin/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errAlreadySignedIn is returned by Login and Register while a session exists.
var errAlreadySignedIn = errors.New("already signed in")

// Register prompts for name, email and password and creates an account.
// On success the new session is active and the home view is shown.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already signed in. Log out first.")
		return errAlreadySignedIn
	}
	a.router.Navigate(nav.ViewRegister, false)

	var in validation.RegisterInput
	var err error
	if in.FirstName, err = getSimpleText(a.reader, "Enter first name", a.out); err != nil {
		return err
	}
	if in.LastName, err = getSimpleText(a.reader, "Enter last name", a.out); err != nil {
		return err
	}
	if in.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)
	in.Password = string(password)

	if _, err := a.auth.Register(ctx, in); err != nil {
		a.printFieldErrors(err)
		return err
	}
	return nil
}

// Login prompts for credentials and signs in. Validation problems are shown
// per field; a rejected login is reported by the notifier.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already signed in. Log out first.")
		return errAlreadySignedIn
	}
	if a.router.Current() != nav.ViewLogin {
		a.router.Navigate(nav.ViewLogin, false)
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if _, err := a.auth.Login(ctx, email, string(password)); err != nil {
		a.printFieldErrors(err)
		return err
	}
	return nil
}

// Logout clears the session and returns to the login view.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// WhoAmI prints the signed-in user and when the access token expires.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.sessions.Read()
	if !s.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	fmt.Fprintf(a.out, "%s <%s>\n", s.User.FullName(), s.User.Email)
	if exp, ok := a.sessions.Expiry(); ok {
		fmt.Fprintf(a.out, "Token expires: %s\n", exp.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// printFieldErrors lists validation failures one per line. Other errors were
// already reported through the notifier.
func (a *App) printFieldErrors(err error) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return
	}
	for _, fe := range verrs {
		fmt.Fprintf(a.out, "  %s: %s\n", fe.Field, fe.Message)
	}
}
