package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"live-commerce/internal/auth"
	"live-commerce/internal/session"
)

var errNotSignedIn = errors.New("not signed in")

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	var creds auth.Credentials
	fs.StringVar(&creds.Email, "email", "", "account email")
	fs.StringVar(&creds.Password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	a.done("Signed in as %s (%s)", s.DisplayName(), s.Role)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	var reg auth.Registration
	fs.StringVar(&reg.Username, "username", "", "display name")
	fs.StringVar(&reg.Email, "email", "", "account email")
	fs.StringVar(&reg.Password, "password", "", "account password")
	fs.StringVar(&reg.Role, "role", session.RoleUser, "user, seller or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	if s.Token == "" {
		a.done("Registered %s, sign in to continue", s.Email)
		return nil
	}
	a.done("Registered and signed in as %s (%s)", s.DisplayName(), s.Role)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.done("Signed out")
	return nil
}

func (a *App) whoami() error {
	s, ok := a.sessions.Current()
	if !ok {
		return errNotSignedIn
	}

	tw := newTable(a.out)
	row(tw, "Name", s.DisplayName())
	row(tw, "Email", orDash(s.Email))
	row(tw, "Role", orDash(s.Role))
	row(tw, "User", orDash(s.UserID))
	if !s.ExpiresAt.IsZero() {
		row(tw, "Expires", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// access reports what the dashboard would do with a navigation to PATH
// under the current session.
func (a *App) access(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: access PATH", ErrUsage)
	}

	var current *session.Session
	if s, ok := a.sessions.Current(); ok {
		current = &s
	}

	decision := session.DefaultRules().Check(args[0], current, a.now())
	if decision.Allowed {
		fmt.Fprintln(a.out, success("allowed"), args[0])
		return nil
	}
	fmt.Fprintln(a.out, warning("redirect"), decision.Redirect)
	return nil
}
