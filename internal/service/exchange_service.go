package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ymatsuda/torikae-backend/internal/model"
	"github.com/ymatsuda/torikae-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidTransition = errors.New("invalid match transition")

// ExchangeService owns every Match status transition after creation. The
// swipe pipeline only ever writes pending; accept/cancel/complete live here.
type ExchangeService interface {
	ListMatches(ctx context.Context, uid string) ([]model.Match, error)
	GetMatch(ctx context.Context, matchID uint64, uid string) (*model.Match, error)
	Accept(ctx context.Context, matchID uint64, uid string) (*model.Match, error)
	Cancel(ctx context.Context, matchID uint64, uid string) (*model.Match, error)
	Complete(ctx context.Context, matchID uint64, uid string) (*model.Match, error)
	PostMessage(ctx context.Context, matchID uint64, uid, body string) (*model.ExchangeMessage, error)
	ListMessages(ctx context.Context, matchID uint64, uid string) ([]model.ExchangeMessage, error)
}

type exchangeService struct {
	matchRepo repository.MatchRepository
	itemRepo  repository.ItemRepository
	msgRepo   repository.ExchangeMessageRepository
	notify    NotificationService
}

func NewExchangeService(matchRepo repository.MatchRepository, itemRepo repository.ItemRepository, msgRepo repository.ExchangeMessageRepository, notify NotificationService) ExchangeService {
	return &exchangeService{matchRepo: matchRepo, itemRepo: itemRepo, msgRepo: msgRepo, notify: notify}
}

func (s *exchangeService) ListMatches(ctx context.Context, uid string) ([]model.Match, error) {
	if uid == "" {
		return nil, errors.New("uid is required")
	}
	return s.matchRepo.ListByUser(ctx, uid)
}

func (s *exchangeService) GetMatch(ctx context.Context, matchID uint64, uid string) (*model.Match, error) {
	return s.findForParticipant(ctx, matchID, uid)
}

func (s *exchangeService) Accept(ctx context.Context, matchID uint64, uid string) (*model.Match, error) {
	m, err := s.findForParticipant(ctx, matchID, uid)
	if err != nil {
		return nil, err
	}
	if m.Status != model.MatchStatusPending {
		return nil, ErrInvalidTransition
	}
	if err := s.matchRepo.UpdateStatus(ctx, m, model.MatchStatusActive); err != nil {
		return nil, err
	}
	s.notifyCounterpart(ctx, m, uid, "match_accepted", "交換が承認されました", "発送の相談を始めましょう。")
	return m, nil
}

func (s *exchangeService) Cancel(ctx context.Context, matchID uint64, uid string) (*model.Match, error) {
	m, err := s.findForParticipant(ctx, matchID, uid)
	if err != nil {
		return nil, err
	}
	if !m.Status.Open() {
		return nil, ErrInvalidTransition
	}
	if err := s.matchRepo.UpdateStatus(ctx, m, model.MatchStatusClosed); err != nil {
		return nil, err
	}
	s.notifyCounterpart(ctx, m, uid, "match_canceled", "交換がキャンセルされました", "相手が交換を取り消しました。")
	return m, nil
}

func (s *exchangeService) Complete(ctx context.Context, matchID uint64, uid string) (*model.Match, error) {
	m, err := s.findForParticipant(ctx, matchID, uid)
	if err != nil {
		return nil, err
	}
	if m.Status != model.MatchStatusActive {
		return nil, ErrInvalidTransition
	}
	if err := s.matchRepo.UpdateStatus(ctx, m, model.MatchStatusClosed); err != nil {
		return nil, err
	}
	// Completing the swap retires both items from the catalog. Best-effort:
	// the match is already closed and retrying item updates is an ops task.
	for _, itemID := range []*uint64{m.UserAItemID, m.UserBItemID} {
		if itemID == nil {
			continue
		}
		item, err := s.itemRepo.FindByID(ctx, *itemID)
		if err != nil {
			logrus.WithError(err).WithField("item", *itemID).Warn("completed swap: item lookup failed")
			continue
		}
		item.Status = model.ItemStatusSwapped
		if err := s.itemRepo.Update(ctx, item); err != nil {
			logrus.WithError(err).WithField("item", *itemID).Warn("completed swap: item update failed")
		}
	}
	s.notifyCounterpart(ctx, m, uid, "match_completed", "交換が完了しました", "取引ありがとうございました。")
	return m, nil
}

func (s *exchangeService) PostMessage(ctx context.Context, matchID uint64, uid, body string) (*model.ExchangeMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("body is required")
	}
	m, err := s.findForParticipant(ctx, matchID, uid)
	if err != nil {
		return nil, err
	}
	if !m.Status.Open() {
		return nil, ErrInvalidTransition
	}
	msg := &model.ExchangeMessage{
		MatchID:   m.ID,
		SenderUID: uid,
		Body:      body,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.notifyCounterpart(ctx, m, uid, "message", "新着メッセージ", body)
	return msg, nil
}

func (s *exchangeService) ListMessages(ctx context.Context, matchID uint64, uid string) ([]model.ExchangeMessage, error) {
	m, err := s.findForParticipant(ctx, matchID, uid)
	if err != nil {
		return nil, err
	}
	return s.msgRepo.ListByMatch(ctx, m.ID)
}

func (s *exchangeService) findForParticipant(ctx context.Context, matchID uint64, uid string) (*model.Match, error) {
	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !m.HasParticipant(uid) {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *exchangeService) notifyCounterpart(ctx context.Context, m *model.Match, actorUID, typ, title, body string) {
	if s.notify == nil {
		return
	}
	other := m.UserAUID
	if actorUID == m.UserAUID {
		other = m.UserBUID
	}
	s.notify.Notify(ctx, other, typ, title, body, nil, &m.ID)
}
