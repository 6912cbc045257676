package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/auth"
	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/user"
)

// error codes
const (
	codeValidation         = "validation_error"
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthenticated    = "unauthenticated"
	codeForbidden          = "forbidden"
	codeNotFound           = "not_found"
	codeConflict           = "conflict"
	codeInternal           = "internal_error"
)

var (
	errPrivilegedFields   = echo.NewHTTPError(http.StatusForbidden, "email and role can only be changed by an administrator")
	errSelfDelete         = echo.NewHTTPError(http.StatusForbidden, "you cannot delete your own account")
	errNotOwnAnnouncement = echo.NewHTTPError(http.StatusForbidden, "You can only edit your own announcements")
	errNotOwnGalleryItem  = echo.NewHTTPError(http.StatusForbidden, "You can only delete items you uploaded, or you must be an admin")
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Debug   string            `json:"debug,omitempty"`
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return codeValidation
	case http.StatusUnauthorized:
		return codeUnauthenticated
	case http.StatusForbidden:
		return codeForbidden
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusConflict:
		return codeConflict
	case http.StatusInternalServerError:
		return codeInternal
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(
	logger core.Logger,
	translator ut.Translator,
	debug bool,
	signalShutdown func(),
) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code int
			resp ErrorResponse
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp.Error = codeForStatus(code)
			if msg, ok := origErr.Message.(string); ok && code != http.StatusInternalServerError {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			resp.Error = codeValidation
			resp.Message = "validation failed"
			resp.Fields = core.ValidationError{
				Fields: core.TranslateValidationErrors(origErr, translator),
			}.FieldMap()
		case *core.ValidationError:
			code = http.StatusBadRequest
			resp.Error = codeValidation
			resp.Message = origErr.Error()
			resp.Fields = origErr.FieldMap()
		default:
			switch origErr {
			case auth.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				resp.Error = codeInvalidCredentials
				resp.Message = "Email or password is incorrect"
			case auth.ErrUnauthenticated:
				code = http.StatusUnauthorized
				resp.Error = codeUnauthenticated
				resp.Message = "Authentication required"
			case user.ErrEmailExists:
				code = http.StatusConflict
				resp.Error = codeConflict
				resp.Message = "An account with this email already exists"
			case user.ErrNotFound:
				code = http.StatusNotFound
				resp.Error = codeNotFound
				resp.Message = "The requested user does not exist"
			case announcement.ErrNotFound:
				code = http.StatusNotFound
				resp.Error = codeNotFound
				resp.Message = "The requested announcement does not exist"
			case gallery.ErrNotFound:
				code = http.StatusNotFound
				resp.Error = codeNotFound
				resp.Message = "The requested gallery item does not exist"
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				resp.Error = codeInternal
				resp.Message = msg

				args := []interface{}{
					errors.Wrap(err, msg),
					map[string]interface{}{
						"method":    ctx.Request().Method,
						"path":      ctx.Path(),
						"requestId": ctx.Response().Header().Get(echo.HeaderXRequestID),
					},
				}
				if usr, ok := contextUser(ctx); ok {
					args = append(args, usr)
				}
				logger.Error(fmt.Sprintf("%s: %v", msg, err), args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if debug {
			resp.Debug = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
