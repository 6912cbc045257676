package gallery

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
)

var (
	// errors
	ErrNotFound = errors.New("gallery item not found")
)

type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"fileUrl"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"` // UTC
}

type NewItem struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	FileURL     string `json:"fileUrl" validate:"required,url"`
}

// Validate cleans then validates the NewItem.
func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Title = core.CleanString(ni.Title)
	ni.Description = core.CleanString(ni.Description)
	ni.FileURL = core.CleanString(ni.FileURL)
	return validate.Struct(ni)
}

type (
	// Repository is implemented by gallery stores.
	// QueryItems lists newest first, ties in insertion order.
	Repository interface {
		CreateItem(ctx context.Context, item Item) (Item, error)
		GetItem(ctx context.Context, id string) (Item, error)
		QueryItems(ctx context.Context) ([]Item, error)
		DeleteItem(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ni NewItem, uploaderID string) (Item, error) {
	item, err := svc.repo.CreateItem(ctx, Item{
		Title:       ni.Title,
		Description: ni.Description,
		FileURL:     ni.FileURL,
		UploadedBy:  uploaderID,
		UploadedAt:  core.NowFunc(),
	})
	return item, errors.Wrap(err, "creating gallery item")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Item, error) {
	return svc.repo.GetItem(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]Item, error) {
	return svc.repo.QueryItems(ctx)
}

// Delete reports whether the item existed.
func (svc *Service) Delete(ctx context.Context, id string) (bool, error) {
	return svc.repo.DeleteItem(ctx, id)
}
