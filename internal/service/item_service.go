package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ymatsuda/torikae-backend/internal/model"
	"github.com/ymatsuda/torikae-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrForbidden = errors.New("forbidden")

type ItemService interface {
	Create(ctx context.Context, ownerUID, title, description string, imageURL *string) (*model.Item, error)
	Update(ctx context.Context, id uint64, ownerUID, title, description string, imageURL *string, status model.ItemStatus) (*model.Item, error)
	Get(ctx context.Context, id uint64) (*model.Item, error)
	List(ctx context.Context, limit, offset int) ([]model.Item, int64, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.Item, error)
}

type itemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func (s *itemService) Create(ctx context.Context, ownerUID, title, description string, imageURL *string) (*model.Item, error) {
	if ownerUID == "" {
		return nil, errors.New("owner is required")
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || len(title) > 120 {
		return nil, errors.New("invalid title")
	}
	if description == "" {
		return nil, errors.New("invalid description")
	}
	if imageURL != nil && strings.HasPrefix(strings.TrimSpace(*imageURL), "data:") {
		return nil, errors.New("imageUrl must be a URL, not data URI")
	}

	item := &model.Item{
		OwnerUID:    ownerUID,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		Status:      model.ItemStatusAvailable,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Update(ctx context.Context, id uint64, ownerUID, title, description string, imageURL *string, status model.ItemStatus) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.OwnerUID != ownerUID {
		return nil, ErrForbidden
	}
	if title = strings.TrimSpace(title); title != "" {
		if len(title) > 120 {
			return nil, errors.New("invalid title")
		}
		item.Title = title
	}
	if description = strings.TrimSpace(description); description != "" {
		item.Description = description
	}
	if imageURL != nil {
		item.ImageURL = imageURL
	}
	if status != "" {
		// Owners may relist or delist; swapped is set by the exchange flow only.
		if status != model.ItemStatusAvailable && status != model.ItemStatusDelisted {
			return nil, errors.New("invalid status")
		}
		item.Status = status
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Get(ctx context.Context, id uint64) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, limit, offset int) ([]model.Item, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *itemService) ListByOwner(ctx context.Context, ownerUID string) ([]model.Item, error) {
	if ownerUID == "" {
		return nil, errors.New("owner is required")
	}
	return s.repo.ListByOwner(ctx, ownerUID)
}
