package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/user"
	feedsvc "github.com/Treasure123-school/THS/services/feed"
)

var announcementDeleted = "Announcement deleted successfully"

type announcementApi struct {
	svc      *announcement.Service
	hub      *feedsvc.Hub
	upgrader *websocket.Upgrader
	validate *validator.Validate
}

func registerAnnouncementAPI(g *echo.Group, s *Server) {
	api := announcementApi{
		svc:      s.AnnouncementSvc,
		hub:      s.FeedHub,
		upgrader: s.upgrader,
		validate: s.Validate,
	}

	ag := g.Group("/announcements")
	ag.GET("", api.query)
	ag.GET("/feed", api.feed, authenticated())
	ag.GET("/:id", api.retrieve)
	ag.POST("", api.create, authorize(user.RoleAdmin, user.RoleTeacher))
	ag.PUT("/:id", api.update, authorize(user.RoleAdmin, user.RoleTeacher))
	ag.DELETE("/:id", api.destroy, authorize(user.RoleAdmin))
}

// Handlers

func (api *announcementApi) query(ctx echo.Context) error {
	var filter announcement.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	announcements, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if announcements == nil {
		announcements = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, announcements)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding announcement by ID")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *announcementApi) create(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}

	var data announcement.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *announcementApi) update(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}

	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding announcement by ID")
	}
	if !user.CanAccessResource(&usr, a.CreatedBy) {
		return errNotOwnAnnouncement
	}

	var data announcement.UpdateAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAnnouncement")
	}
	data.ID = a.ID
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err = api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	deleted, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	if !deleted {
		return announcement.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: announcementDeleted})
}

// feed streams announcement events visible to the current user over a websocket.
func (api *announcementApi) feed(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.hub.Serve(api.upgrader, ctx.Response(), ctx.Request(), usr.Role); err != nil {
		// the upgrader has already replied
		ctx.Logger().Warnf("upgrading feed connection: %v", err)
	}
	return nil
}
