// Package contact records messages sent through the public contact form and notifies the school office.
package contact

import (
	"context"
	"encoding/json"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
)

// Message is append-only: it has no id and is never updated or deleted.
type Message struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"` // UTC
}

type NewMessage struct {
	Name    string `json:"name" validate:"required,notblank"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10"`
}

// Validate cleans then validates the NewMessage.
func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Message = core.CleanString(nm.Message)
	return validate.Struct(nm)
}

type (
	// Repository is implemented by contact logs. QueryMessages lists newest first.
	Repository interface {
		AppendMessage(ctx context.Context, msg Message) error
		QueryMessages(ctx context.Context) ([]Message, error)
	}

	Service struct {
		repo       Repository
		events     core.EventPublisher
		mailSvc    core.EmailService
		recipients []mail.Address
		appName    string
		logger     core.Logger
	}
)

func NewService(
	repo Repository,
	events core.EventPublisher,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		events:     events,
		mailSvc:    mailSvc,
		recipients: conf.ContactRecipients,
		appName:    conf.AppName,
		logger:     logger,
	}
}

// Submit appends a validated NewMessage to the log and announces it on the event bus.
func (svc *Service) Submit(ctx context.Context, nm NewMessage) (Message, error) {
	msg := Message{
		Name:        nm.Name,
		Email:       nm.Email,
		Message:     nm.Message,
		SubmittedAt: core.NowFunc(),
	}
	if err := svc.repo.AppendMessage(ctx, msg); err != nil {
		return Message{}, errors.Wrap(err, "appending contact message")
	}
	if err := svc.events.Publish(ctx, core.TopicContactSubmitted, msg); err != nil {
		svc.logger.Error("publishing "+core.TopicContactSubmitted, errors.Wrap(err, "publishing event"))
	}
	return msg, nil
}

func (svc *Service) Query(ctx context.Context) ([]Message, error) {
	return svc.repo.QueryMessages(ctx)
}

// HandleSubmitted emails the office about a submitted message. It consumes TopicContactSubmitted payloads.
func (svc *Service) HandleSubmitted(payload []byte) error {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return errors.Wrap(err, "decoding contact message")
	}
	svc.Notify(msg)
	return nil
}

// Notify sends the office notification for msg.
func (svc *Service) Notify(msg Message) {
	if len(svc.recipients) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           svc.recipients,
		ReplyTo:      &mail.Address{Name: msg.Name, Address: msg.Email},
		Subject:      "New contact message from " + msg.Name,
		TemplateName: "contact_notification",
		TemplateData: notificationData{
			AppName:     svc.appName,
			Name:        msg.Name,
			Email:       msg.Email,
			Message:     msg.Message,
			SubmittedAt: msg.SubmittedAt.Format(time.RFC1123),
		},
	})
}

type notificationData struct {
	AppName     string
	Name        string
	Email       string
	Message     string
	SubmittedAt string
}
