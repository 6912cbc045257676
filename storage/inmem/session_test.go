package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/Treasure123-school/THS/core/session"
)

func TestSessionService_InMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	mockNow(t, now)

	svc := session.NewService(NewSessionRepository(Open()), 7*24*time.Hour)

	sess, err := svc.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if !sess.ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v; want %v", sess.ExpiresAt, now.Add(7*24*time.Hour))
	}

	other, _ := svc.Create(ctx, "user-1")
	if other.ID == sess.ID {
		t.Fatal("Create() reused a token")
	}

	if uid, err := svc.Resolve(ctx, sess.ID); err != nil || uid != "user-1" {
		t.Errorf("Resolve() = %q, %v; want user-1, nil", uid, err)
	}

	if err = svc.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("Destroy(): %v", err)
	}
	if err = svc.Destroy(ctx, sess.ID); err != nil {
		t.Errorf("Destroy() twice: %v", err)
	}
	if _, err = svc.Resolve(ctx, sess.ID); err != session.ErrNoSession {
		t.Errorf("Resolve(destroyed) error = %v; want %v", err, session.ErrNoSession)
	}
	if _, err = svc.Resolve(ctx, ""); err != session.ErrNoSession {
		t.Errorf("Resolve(empty) error = %v; want %v", err, session.ErrNoSession)
	}

	// natural expiry
	mockNow(t, now.Add(7*24*time.Hour))
	if _, err = svc.Resolve(ctx, other.ID); err != session.ErrNoSession {
		t.Errorf("Resolve(expired) error = %v; want %v", err, session.ErrNoSession)
	}
}
