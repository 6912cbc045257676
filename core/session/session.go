// Package session manages server-side login sessions.
// A session token is an opaque random value; the account it belongs to is only known to the store.
package session

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
)

var (
	// errors
	ErrNotFound  = errors.New("session not found")
	ErrNoSession = errors.New("no valid session")
	ErrExists    = errors.New("session already exists")

	tokenLen = 32
)

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type (
	// Repository stores sessions. CreateSession never overwrites an existing token.
	Repository interface {
		CreateSession(ctx context.Context, sess Session) error
		GetSession(ctx context.Context, id string) (Session, error)
		DeleteSession(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		lifetime time.Duration
	}
)

func NewService(repo Repository, lifetime time.Duration) *Service {
	return &Service{repo: repo, lifetime: lifetime}
}

func (svc *Service) Lifetime() time.Duration { return svc.lifetime }

// Create starts a new session for userID.
func (svc *Service) Create(ctx context.Context, userID string) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	now := core.NowFunc()
	sess := Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.lifetime),
	}
	if err = svc.repo.CreateSession(ctx, sess); err != nil {
		return Session{}, errors.Wrap(err, "creating session")
	}
	return sess, nil
}

// Resolve returns the user ID bound to token.
// Unknown, destroyed and expired sessions all yield ErrNoSession; expired ones are removed.
func (svc *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	sess, err := svc.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return "", ErrNoSession
		}
		return "", errors.Wrap(err, "getting session")
	}
	if sess.IsExpired(core.NowFunc()) {
		if err = svc.repo.DeleteSession(ctx, token); err != nil {
			return "", errors.Wrap(err, "deleting expired session")
		}
		return "", ErrNoSession
	}
	return sess.UserID, nil
}

// Destroy ends the session. Destroying an unknown session is not an error.
func (svc *Service) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return errors.Wrap(svc.repo.DeleteSession(ctx, token), "deleting session")
}

func newToken() (string, error) {
	b := securecookie.GenerateRandomKey(tokenLen)
	if b == nil {
		return "", errors.New("generating session token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
