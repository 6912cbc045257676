package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core/user"
	exportsvc "github.com/Treasure123-school/THS/services/export"
)

var (
	userDeleted    = "User deleted successfully"
	usersExportCD  = `attachment; filename="users.xlsx"`
	contextObjKey  = "object"
	errObjNotInCtx = errors.New("object not found in echo.Context")
)

type userApi struct {
	svc      user.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, s *Server) {
	api := userApi{
		svc:      s.UserSvc,
		validate: s.Validate,
	}

	ag := g.Group("/admin", authorize(user.RoleAdmin))
	ag.GET("/stats", api.stats)

	ug := ag.Group("/users")
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.GET("/export", api.export)

	// detail endpoints
	dg := ug.Group("/:id", userObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) queryUsers(ctx echo.Context) ([]user.User, error) {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.queryUsers(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) export(ctx echo.Context) error {
	users, err := api.queryUsers(ctx)
	if err != nil {
		return err
	}
	f, err := exportsvc.UsersWorkbook(users)
	if err != nil {
		return errors.Wrap(err, "building users workbook")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return errors.Wrap(err, "writing users workbook")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, usersExportCD)
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}

func (api *userApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing user stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjKey).(user.User)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjKey).(user.User)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(usr, api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjKey).(user.User)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if usr.ID == ctxUsr.ID {
		return errSelfDelete
	}

	deleted, err := api.svc.Delete(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if !deleted {
		return user.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: userDeleted})
}

// userObjectMiddleware loads the user named by the `:id` path param into the context.
func userObjectMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding user by ID")
			}
			ctx.Set(contextObjKey, usr)
			return next(ctx)
		}
	}
}
