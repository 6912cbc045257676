// Package auth binds accounts to sessions: login, sign-up, logout and current-user resolution.
package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core/session"
	"github.com/Treasure123-school/THS/core/user"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("user session is invalid or expired")
)

type Service struct {
	users    user.Service
	sessions *session.Service
}

func NewService(users user.Service, sessions *session.Service) *Service {
	return &Service{users: users, sessions: sessions}
}

// Login verifies the credentials and starts a fresh session, ending prevToken's session if any.
func (svc *Service) Login(ctx context.Context, email, pwd, prevToken string) (user.User, session.Session, error) {
	usr, err := svc.users.Authenticate(ctx, email, pwd)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, session.Session{}, ErrInvalidCredentials
		}
		return user.User{}, session.Session{}, errors.Wrap(err, "authenticating")
	}
	sess, err := svc.rotate(ctx, usr.ID, prevToken)
	if err != nil {
		return user.User{}, session.Session{}, err
	}
	return usr, sess, nil
}

// Signup creates an account from a validated NewUser and logs it in.
func (svc *Service) Signup(ctx context.Context, nu user.NewUser, prevToken string) (user.User, session.Session, error) {
	usr, err := svc.users.Create(ctx, nu)
	if err != nil {
		return user.User{}, session.Session{}, errors.Wrap(err, "creating user")
	}
	sess, err := svc.rotate(ctx, usr.ID, prevToken)
	if err != nil {
		return user.User{}, session.Session{}, err
	}
	return usr, sess, nil
}

func (svc *Service) rotate(ctx context.Context, userID, prevToken string) (session.Session, error) {
	if err := svc.sessions.Destroy(ctx, prevToken); err != nil {
		return session.Session{}, errors.Wrap(err, "destroying previous session")
	}
	sess, err := svc.sessions.Create(ctx, userID)
	return sess, errors.Wrap(err, "creating session")
}

// Logout ends the session. It is idempotent.
func (svc *Service) Logout(ctx context.Context, token string) error {
	return svc.sessions.Destroy(ctx, token)
}

// CurrentUser resolves token to its account.
// A session whose account was deleted is treated like no session at all.
func (svc *Service) CurrentUser(ctx context.Context, token string) (user.User, error) {
	uid, err := svc.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Cause(err) == session.ErrNoSession {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, errors.Wrap(err, "resolving session")
	}
	usr, err := svc.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}

// ForgotPassword starts the password reset workflow.
// Unknown emails are not reported so that callers cannot enumerate accounts.
func (svc *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := svc.users.RequestPasswordReset(ctx, email); err != nil && errors.Cause(err) != user.ErrNotFound {
		return errors.Wrap(err, "requesting password reset")
	}
	return nil
}
