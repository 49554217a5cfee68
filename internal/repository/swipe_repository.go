package repository

import (
	"context"
	"errors"

	"github.com/ymatsuda/torikae-backend/internal/model"
	"gorm.io/gorm"
)

type SwipeRepository interface {
	Create(ctx context.Context, s *model.SwipeEvent) error
	// FindLatestComplement returns the most recent positive swipe made by
	// counterpartUID on any item owned by ownerUID, of the given kind. Returns
	// nil when no such swipe exists.
	FindLatestComplement(ctx context.Context, counterpartUID, ownerUID string, kind model.SwipeKind) (*model.SwipeEvent, error)
	SetDB(db *gorm.DB)
}

type swipeRepository struct {
	db *gorm.DB
}

func NewSwipeRepository(db *gorm.DB) SwipeRepository {
	return &swipeRepository{db: db}
}

func (r *swipeRepository) Create(ctx context.Context, s *model.SwipeEvent) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *swipeRepository) FindLatestComplement(ctx context.Context, counterpartUID, ownerUID string, kind model.SwipeKind) (*model.SwipeEvent, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var s model.SwipeEvent
	err := r.db.WithContext(ctx).
		Where("swiper_uid = ? AND target_owner_uid = ? AND kind = ? AND direction IN ?",
			counterpartUID, ownerUID, kind,
			[]model.SwipeDirection{model.SwipeDirectionLike, model.SwipeDirectionSuperlike}).
		Order("created_at DESC, id DESC").
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *swipeRepository) SetDB(db *gorm.DB) {
	r.db = db
}
