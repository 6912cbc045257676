package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

var (
	salt    = []byte("ths.core.user.token_gen")
	nowFunc = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// resetClaims are carried by password reset tokens.
// The fingerprint binds a token to the password hash it was issued for, making it single-use.
type resetClaims struct {
	jwt.RegisteredClaims
	Fingerprint string `json:"fp"`
}

type tokenGenerator struct {
	key []byte
	ttl time.Duration
}

func newTokenGenerator(secretKey string, ttl time.Duration) tokenGenerator {
	key := sha256.Sum256(append(append([]byte{}, salt...), secretKey...))
	return tokenGenerator{key: key[:], ttl: ttl}
}

// makeToken generates a password reset token for a given User.
func (tg tokenGenerator) makeToken(usr User) (string, error) {
	now := nowFunc()
	claims := resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   usr.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.ttl)),
		},
		Fingerprint: fingerprint(usr),
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tg.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// tokenSubject checks the signature and expiry of a token and returns the User ID it was issued for.
func (tg tokenGenerator) tokenSubject(token string) (string, error) {
	claims, err := tg.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// verifyToken checks that a password reset token for a given User is valid.
func (tg tokenGenerator) verifyToken(usr User, token string) error {
	claims, err := tg.parse(token)
	if err != nil {
		return err
	}
	if claims.Subject != usr.ID {
		return errInvalidToken
	}
	// the password has changed since the token was issued
	if subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(fingerprint(usr))) == 0 {
		return errInvalidToken
	}
	return nil
}

func (tg tokenGenerator) parse(token string) (*resetClaims, error) {
	if token == "" {
		return nil, errInvalidToken
	}
	claims := new(resetClaims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidToken
		}
		return tg.key, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errTokenExpired
		}
		return nil, errInvalidToken
	}
	return claims, nil
}

func fingerprint(usr User) string {
	sum := sha256.Sum256(append([]byte(usr.ID+":"), usr.PasswordHash...))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}
