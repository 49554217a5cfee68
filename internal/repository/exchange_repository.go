package repository

import (
	"context"

	"github.com/ymatsuda/torikae-backend/internal/model"
	"gorm.io/gorm"
)

type ExchangeMessageRepository interface {
	Create(ctx context.Context, msg *model.ExchangeMessage) error
	ListByMatch(ctx context.Context, matchID uint64) ([]model.ExchangeMessage, error)
	SetDB(db *gorm.DB)
}

type exchangeMessageRepository struct {
	db *gorm.DB
}

func NewExchangeMessageRepository(db *gorm.DB) ExchangeMessageRepository {
	return &exchangeMessageRepository{db: db}
}

func (r *exchangeMessageRepository) Create(ctx context.Context, msg *model.ExchangeMessage) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *exchangeMessageRepository) ListByMatch(ctx context.Context, matchID uint64) ([]model.ExchangeMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.ExchangeMessage
	if err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *exchangeMessageRepository) SetDB(db *gorm.DB) {
	r.db = db
}
