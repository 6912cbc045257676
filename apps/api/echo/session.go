package echoapi

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/auth"
	"github.com/Treasure123-school/THS/core/session"
	"github.com/Treasure123-school/THS/core/user"
)

var (
	contextUserKey  = "user"
	contextTokenKey = "sessionToken"
)

// cookieCodec carries session tokens in a signed, HTTP-only cookie.
type cookieCodec struct {
	name string
	sc   *securecookie.SecureCookie
	opts sessions.Options
}

func newCookieCodec(conf *core.Config) *cookieCodec {
	maxAge := int(conf.Session.Lifetime.Seconds())

	opts := sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if conf.IsProd() {
		// the frontend is served from another site
		opts.Secure = true
		opts.SameSite = http.SameSiteNoneMode
	}

	sc := securecookie.New([]byte(conf.SecretKey), nil)
	sc.MaxAge(maxAge)

	return &cookieCodec{name: conf.Session.CookieName, sc: sc, opts: opts}
}

func (cc *cookieCodec) write(ctx echo.Context, sess session.Session) error {
	encoded, err := cc.sc.Encode(cc.name, sess.ID)
	if err != nil {
		return errors.Wrap(err, "encoding session cookie")
	}
	ctx.SetCookie(sessions.NewCookie(cc.name, encoded, &cc.opts))
	return nil
}

func (cc *cookieCodec) clear(ctx echo.Context) {
	opts := cc.opts
	opts.MaxAge = -1
	ctx.SetCookie(sessions.NewCookie(cc.name, "", &opts))
}

// read returns the session token carried by the request, or "" when it has none or its signature is invalid.
func (cc *cookieCodec) read(ctx echo.Context) string {
	cookie, err := ctx.Cookie(cc.name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	var token string
	if err = cc.sc.Decode(cc.name, cookie.Value, &token); err != nil {
		return ""
	}
	return token
}

// sessionMiddleware attaches the session token and its user, if any, to every request.
// Requests without a valid session go on anonymously; the gates decide whether that is allowed.
func sessionMiddleware(cc *cookieCodec, svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := cc.read(ctx)
			if token == "" {
				return next(ctx)
			}
			ctx.Set(contextTokenKey, token)

			usr, err := svc.CurrentUser(ctx.Request().Context(), token)
			if err != nil {
				if errors.Cause(err) == auth.ErrUnauthenticated {
					return next(ctx)
				}
				return errors.Wrap(err, "resolving current user")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func contextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

func contextToken(ctx echo.Context) string {
	token, _ := ctx.Get(contextTokenKey).(string)
	return token
}

// mustContextUser is for handlers behind the authentication gate.
func mustContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := contextUser(ctx); ok {
		return usr, nil
	}
	return user.User{}, auth.ErrUnauthenticated
}
