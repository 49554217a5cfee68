package service

import (
	"context"
	"sync"
	"time"

	"github.com/ymatsuda/torikae-backend/internal/model"
	"github.com/ymatsuda/torikae-backend/internal/repository"
	"gorm.io/gorm"
)

// In-memory fakes behind the repository interfaces. The match fake enforces
// the same one-open-match-per-pair constraint the MySQL unique index does, so
// race handling can be exercised for real.

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uint64]model.Item
	next  uint64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[uint64]model.Item{}}
}

func (r *fakeItemRepo) Create(_ context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	item.ID = r.next
	item.CreatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uint64) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *fakeItemRepo) List(_ context.Context, limit, offset int) ([]model.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Item
	for _, it := range r.items {
		if it.Status == model.ItemStatusAvailable {
			out = append(out, it)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeItemRepo) ListByOwner(_ context.Context, ownerUID string) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Item
	for _, it := range r.items {
		if it.OwnerUID == ownerUID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) SetDB(*gorm.DB) {}

func (r *fakeItemRepo) add(ownerUID, title string) uint64 {
	item := model.Item{OwnerUID: ownerUID, Title: title, Description: title, Status: model.ItemStatusAvailable}
	_ = r.Create(context.Background(), &item)
	return item.ID
}

type fakeSwipeRepo struct {
	mu      sync.Mutex
	swipes  []model.SwipeEvent
	next    uint64
	findErr error
}

func newFakeSwipeRepo() *fakeSwipeRepo {
	return &fakeSwipeRepo{}
}

func (r *fakeSwipeRepo) Create(_ context.Context, s *model.SwipeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	s.ID = r.next
	s.CreatedAt = time.Now()
	r.swipes = append(r.swipes, *s)
	return nil
}

func (r *fakeSwipeRepo) FindLatestComplement(_ context.Context, counterpartUID, ownerUID string, kind model.SwipeKind) (*model.SwipeEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var latest *model.SwipeEvent
	for i := range r.swipes {
		s := r.swipes[i]
		if s.SwiperUID != counterpartUID || s.TargetOwnerUID != ownerUID || s.Kind != kind || !s.Direction.Positive() {
			continue
		}
		if latest == nil || s.ID > latest.ID {
			cp := s
			latest = &cp
		}
	}
	return latest, nil
}

func (r *fakeSwipeRepo) SetDB(*gorm.DB) {}

func (r *fakeSwipeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.swipes)
}

type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   map[uint64]model.Match
	next      uint64
	createErr error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[uint64]model.Match{}}
}

func (r *fakeMatchRepo) CreateOpen(_ context.Context, m *model.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	key := model.PairKey(m.UserAUID, m.UserBUID)
	for _, existing := range r.matches {
		if existing.OpenPairKey != nil && *existing.OpenPairKey == key {
			return repository.ErrDuplicateOpenMatch
		}
	}
	r.next++
	m.ID = r.next
	m.OpenPairKey = &key
	m.CreatedAt = time.Now()
	r.matches[m.ID] = *m
	return nil
}

func (r *fakeMatchRepo) FindOpenByPair(_ context.Context, uidA, uidB string) (*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := model.PairKey(uidA, uidB)
	for _, m := range r.matches {
		if m.OpenPairKey != nil && *m.OpenPairKey == key {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMatchRepo) FindByID(_ context.Context, id uint64) (*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *fakeMatchRepo) ListByUser(_ context.Context, uid string) ([]model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Match
	for _, m := range r.matches {
		if m.UserAUID == uid || m.UserBUID == uid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, m *model.Match, status model.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[m.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = status
	if !status.Open() {
		stored.OpenPairKey = nil
	}
	r.matches[m.ID] = stored
	m.Status = stored.Status
	m.OpenPairKey = stored.OpenPairKey
	return nil
}

func (r *fakeMatchRepo) SetDB(*gorm.DB) {}

func (r *fakeMatchRepo) countAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}

type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs []model.ExchangeMessage
	next uint64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *model.ExchangeMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	msg.ID = r.next
	msg.CreatedAt = time.Now()
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByMatch(_ context.Context, matchID uint64) ([]model.ExchangeMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ExchangeMessage
	for _, m := range r.msgs {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) SetDB(*gorm.DB) {}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	notes []model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint64(len(r.notes) + 1)
	r.notes = append(r.notes, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.notes {
		if n.UserUID == userUID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for i := range r.notes {
		if r.notes[i].UserUID == userUID && r.notes[i].ReadAt == nil {
			r.notes[i].ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userUID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cnt int64
	for _, n := range r.notes {
		if n.UserUID == userUID && n.ReadAt == nil {
			cnt++
		}
	}
	return cnt, nil
}

func (r *fakeNotificationRepo) SetDB(*gorm.DB) {}
