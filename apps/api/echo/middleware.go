package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Treasure123-school/THS/core/auth"
	"github.com/Treasure123-school/THS/core/user"
)

// authenticated rejects anonymous requests.
func authenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, ok := contextUser(ctx); !ok {
				return auth.ErrUnauthenticated
			}
			return next(ctx)
		}
	}
}

// authorize only lets through users holding one of roles.
func authorize(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, ok := contextUser(ctx)
			if !ok {
				return auth.ErrUnauthenticated
			}
			if !user.HasAnyRole(&usr, roles...) {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf(
					"Access denied. Required roles: %s. Your role: %s", user.JoinRoles(roles), usr.Role,
				))
			}
			return next(ctx)
		}
	}
}
