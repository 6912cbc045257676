package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/user"
)

var galleryItemDeleted = "Gallery item deleted successfully"

type galleryApi struct {
	svc      *gallery.Service
	validate *validator.Validate
}

func registerGalleryAPI(g *echo.Group, s *Server) {
	api := galleryApi{
		svc:      s.GallerySvc,
		validate: s.Validate,
	}

	gg := g.Group("/gallery")
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.POST("", api.create, authorize(user.RoleAdmin, user.RoleTeacher))
	gg.DELETE("/:id", api.destroy, authorize(user.RoleAdmin, user.RoleTeacher))
}

// Handlers

func (api *galleryApi) query(ctx echo.Context) error {
	items, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying gallery items")
	}
	if items == nil {
		items = []gallery.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *galleryApi) retrieve(ctx echo.Context) error {
	item, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding gallery item by ID")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *galleryApi) create(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}

	var data gallery.NewItem
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.Create(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating gallery item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *galleryApi) destroy(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}

	item, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding gallery item by ID")
	}
	if !user.CanAccessResource(&usr, item.UploadedBy) {
		return errNotOwnGalleryItem
	}

	deleted, err := api.svc.Delete(ctx.Request().Context(), item.ID)
	if err != nil {
		return errors.Wrap(err, "deleting gallery item")
	}
	if !deleted {
		return gallery.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: galleryItemDeleted})
}
