package user

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	ttl := 24 * time.Hour
	tg := newTokenGenerator("secret", ttl)

	now := time.Now()
	usr := User{
		ID:        "0b0d7b64-63bd-4bd5-bd4b-55a1d1b8a5f1",
		Name:      "T",
		Email:     "t@test.test",
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = usr.SetPassword("pwd")

	validToken, err := tg.makeToken(usr)
	if err != nil {
		t.Fatalf("makeToken(): %v", err)
	}

	// generate an expired token
	dayLate := ttl + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := tg.makeToken(usr)
	nowFunc = time.Now // reset
	if err != nil {
		t.Fatalf("makeToken(): %v", err)
	}

	// a token signed with another key
	forgedToken, err := newTokenGenerator("not-the-secret", ttl).makeToken(usr)
	if err != nil {
		t.Fatalf("makeToken(): %v", err)
	}

	// the password changed after the token was issued
	usedUsr := usr
	_ = usedUsr.SetPassword("new-pwd")

	otherUsr := usr
	otherUsr.ID = "8d1f2b0e-6a4e-4c73-9a55-0bdf5b1e2c11"

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: errInvalidToken},
		{name: "malformed token", usr: usr, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "forged token", usr: usr, token: forgedToken, wantErr: errInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: errTokenExpired},
		{name: "used token", usr: usedUsr, token: validToken, wantErr: errInvalidToken},
		{name: "other user", usr: otherUsr, token: validToken, wantErr: errInvalidToken},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tg.verifyToken(tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenSubject(t *testing.T) {
	tg := newTokenGenerator("secret", time.Hour)
	usr := User{ID: "42"}

	token, err := tg.makeToken(usr)
	if err != nil {
		t.Fatalf("makeToken(): %v", err)
	}
	sub, err := tg.tokenSubject(token)
	if err != nil {
		t.Fatalf("tokenSubject(): %v", err)
	}
	if sub != usr.ID {
		t.Errorf("tokenSubject() = %q; want %q", sub, usr.ID)
	}
}
