package repository

import (
	"context"
	"errors"

	"github.com/ymatsuda/torikae-backend/internal/model"
	"gorm.io/gorm"
)

// ErrDuplicateOpenMatch is returned by CreateOpen when the unique index on
// open_pair_key rejects a second open match for the same user pair. Callers
// treat it as "somebody else won the race" and re-query.
var ErrDuplicateOpenMatch = errors.New("open match already exists for pair")

type MatchRepository interface {
	// CreateOpen inserts a pending match with its open pair key populated.
	CreateOpen(ctx context.Context, m *model.Match) error
	FindOpenByPair(ctx context.Context, uidA, uidB string) (*model.Match, error)
	FindByID(ctx context.Context, id uint64) (*model.Match, error)
	ListByUser(ctx context.Context, uid string) ([]model.Match, error)
	// UpdateStatus transitions the match and clears the open pair key when the
	// new status is closed, freeing the pair for future matches.
	UpdateStatus(ctx context.Context, m *model.Match, status model.MatchStatus) error
	SetDB(db *gorm.DB)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateOpen(ctx context.Context, m *model.Match) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	key := model.PairKey(m.UserAUID, m.UserBUID)
	m.OpenPairKey = &key
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOpenMatch
		}
		return err
	}
	return nil
}

func (r *matchRepository) FindOpenByPair(ctx context.Context, uidA, uidB string) (*model.Match, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var m model.Match
	err := r.db.WithContext(ctx).
		Where("open_pair_key = ?", model.PairKey(uidA, uidB)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *matchRepository) FindByID(ctx context.Context, id uint64) (*model.Match, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var m model.Match
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *matchRepository) ListByUser(ctx context.Context, uid string) ([]model.Match, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Match
	if err := r.db.WithContext(ctx).
		Where("user_a_uid = ? OR user_b_uid = ?", uid, uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) UpdateStatus(ctx context.Context, m *model.Match, status model.MatchStatus) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	updates := map[string]interface{}{"status": status}
	if !status.Open() {
		updates["open_pair_key"] = nil
	}
	if err := r.db.WithContext(ctx).Model(m).Updates(updates).Error; err != nil {
		return err
	}
	m.Status = status
	if !status.Open() {
		m.OpenPairKey = nil
	}
	return nil
}

func (r *matchRepository) SetDB(db *gorm.DB) {
	r.db = db
}
