package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core/contact"
	"github.com/Treasure123-school/THS/core/user"
)

var contactThanks = "Thank you for your message! We'll get back to you within 24 hours."

type contactApi struct {
	svc      *contact.Service
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, s *Server) {
	api := contactApi{
		svc:      s.ContactSvc,
		validate: s.Validate,
	}

	g.POST("/contact", api.submit)
	g.GET("/admin/contact-messages", api.query, authorize(user.RoleAdmin))
}

type ContactResponse struct {
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Handlers

func (api *contactApi) submit(ctx echo.Context) error {
	var data contact.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting contact message")
	}
	return ctx.JSON(http.StatusCreated, ContactResponse{Message: contactThanks, SubmittedAt: msg.SubmittedAt})
}

func (api *contactApi) query(ctx echo.Context) error {
	msgs, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying contact messages")
	}
	if msgs == nil {
		msgs = []contact.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}
