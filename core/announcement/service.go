package announcement

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
)

var (
	// errors
	ErrNotFound = errors.New("announcement not found")
)

type (
	// Repository is implemented by announcement stores.
	// QueryAnnouncements lists newest first, ties in insertion order.
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id string) (Announcement, error)
		QueryAnnouncements(ctx context.Context, filter QueryFilter) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, id string, patch Patch) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		repo   Repository
		events core.EventPublisher
		logger core.Logger
	}

	// Event is the payload of announcement topics.
	Event struct {
		Type         string       `json:"type"`
		Announcement Announcement `json:"announcement"`
	}
)

func NewService(repo Repository, events core.EventPublisher, logger core.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

func (svc *Service) Create(ctx context.Context, na NewAnnouncement, authorID string) (Announcement, error) {
	now := core.NowFunc()
	a, err := svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:     na.Title,
		Content:   na.Content,
		Audience:  na.Audience,
		CreatedBy: authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Announcement{}, errors.Wrap(err, "creating announcement")
	}
	svc.publish(ctx, core.TopicAnnouncementCreated, a)
	return a, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Announcement, error) {
	return svc.repo.GetAnnouncement(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, ua UpdateAnnouncement) (Announcement, error) {
	a, err := svc.repo.UpdateAnnouncement(ctx, ua.ID, ua.patch())
	if err != nil {
		return Announcement{}, errors.Wrap(err, "updating announcement")
	}
	svc.publish(ctx, core.TopicAnnouncementUpdated, a)
	return a, nil
}

// Delete reports whether the announcement existed.
func (svc *Service) Delete(ctx context.Context, id string) (bool, error) {
	a, err := svc.repo.GetAnnouncement(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding announcement")
	}
	deleted, err := svc.repo.DeleteAnnouncement(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting announcement")
	}
	if deleted {
		svc.publish(ctx, core.TopicAnnouncementDeleted, a)
	}
	return deleted, nil
}

func (svc *Service) publish(ctx context.Context, topic string, a Announcement) {
	if err := svc.events.Publish(ctx, topic, Event{Type: topic, Announcement: a}); err != nil {
		svc.logger.Error("publishing "+topic, errors.Wrap(err, "publishing event"))
	}
}

// Validate cleans then validates the NewAnnouncement.
func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	na.Audience = na.Audience.Clean()
	if err := validate.Struct(na); err != nil {
		return err
	}
	return na.Audience.check()
}

// Validate cleans then validates the set fields of the UpdateAnnouncement.
func (ua *UpdateAnnouncement) Validate(validate *validator.Validate) error {
	var flds []core.FieldError
	if ua.Title != nil {
		title := core.CleanString(*ua.Title)
		if title == "" {
			flds = append(flds, core.FieldError{Field: "title", Error: "this field cannot be blank"})
		}
		ua.Title = &title
	}
	if ua.Content != nil {
		content := core.CleanString(*ua.Content)
		if content == "" {
			flds = append(flds, core.FieldError{Field: "content", Error: "this field cannot be blank"})
		}
		ua.Content = &content
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("invalid announcement"), flds...)
	}
	if ua.Audience != nil {
		ua.Audience = ua.Audience.Clean()
	}
	if err := validate.Struct(ua); err != nil {
		return err
	}
	return ua.Audience.check()
}
