package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/auth"
	"github.com/Treasure123-school/THS/core/user"
)

var (
	forgotPasswordAck = "If an account with that email exists, a password reset link has been sent."
	passwordResetDone = "Password has been reset with the new password."
	loggedOut         = "Logged out successfully"
)

type authApi struct {
	svc      *auth.Service
	usrSvc   user.Service
	logger   core.Logger
	cookies  *cookieCodec
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, s *Server) {
	api := authApi{
		svc:      s.AuthSvc,
		usrSvc:   s.UserSvc,
		logger:   s.Logger,
		cookies:  s.cookies,
		validate: s.Validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/login`, `/forgot-password` & `/reset-password`
	ag.POST("/login", api.login)
	ag.POST("/signup", api.signup)
	ag.POST("/logout", api.logout)
	ag.POST("/forgot-password", api.forgotPassword)
	ag.POST("/reset-password", api.resetPassword)

	// authed endpoints
	ag.GET("/me", api.me, authenticated())
	ag.PUT("/me", api.updateMe, authenticated())
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, sess, err := api.svc.Login(ctx.Request().Context(), data.Email, data.Password, contextToken(ctx))
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	if err = api.cookies.write(ctx, sess); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.RequirePassword = true
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, sess, err := api.svc.Signup(ctx.Request().Context(), data, contextToken(ctx))
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	if err = api.cookies.write(ctx, sess); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := api.svc.Logout(ctx.Request().Context(), contextToken(ctx)); err != nil {
		return errors.Wrap(err, "logging out")
	}
	api.cookies.clear(ctx)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: loggedOut})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) updateMe(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(usr, api.validate); err != nil {
		return err
	}
	// `Email` and `Role` can only be changed by admin
	if !usr.IsAdmin() && data.ChangesPrivilegedFields(usr) {
		return errPrivilegedFields
	}

	usr, err = api.usrSvc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) forgotPassword(ctx echo.Context) error {
	var data ForgotPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPasswordRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ForgotPassword(ctx.Request().Context(), data.Email); err != nil {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: forgotPasswordAck})
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.usrSvc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: passwordResetDone})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (fr *ForgotPasswordRequest) Validate(validate *validator.Validate) error {
	fr.Email = core.CleanString(fr.Email, true /* lower */)
	return validate.Struct(fr)
}
