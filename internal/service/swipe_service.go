package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/ymatsuda/torikae-backend/internal/model"
	"github.com/ymatsuda/torikae-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrSelfSwipe    = errors.New("cannot swipe on your own item")
	ErrInvalidSwipe = errors.New("invalid swipe")
)

// SwipeOutcome tags what the matching phase produced for a recorded swipe.
type SwipeOutcome string

const (
	SwipeOutcomeNone        SwipeOutcome = "none"
	SwipeOutcomeCreated     SwipeOutcome = "created"
	SwipeOutcomeAlreadyOpen SwipeOutcome = "already_open"
)

type SwipeResult struct {
	Swipe   *model.SwipeEvent
	Match   *model.Match
	Outcome SwipeOutcome
}

type SwipeService interface {
	// RecordSwipe persists one directional swipe and, for positive directions,
	// runs mutual-match detection. The swipe row is committed before matching
	// starts; matching failures degrade to a match-less result instead of
	// failing the request.
	RecordSwipe(ctx context.Context, swiperUID string, itemID uint64, kind model.SwipeKind, direction model.SwipeDirection) (*SwipeResult, error)
}

type swipeService struct {
	itemRepo  repository.ItemRepository
	swipeRepo repository.SwipeRepository
	matchRepo repository.MatchRepository
	notify    NotificationService
}

func NewSwipeService(itemRepo repository.ItemRepository, swipeRepo repository.SwipeRepository, matchRepo repository.MatchRepository, notify NotificationService) SwipeService {
	return &swipeService{itemRepo: itemRepo, swipeRepo: swipeRepo, matchRepo: matchRepo, notify: notify}
}

func (s *swipeService) RecordSwipe(ctx context.Context, swiperUID string, itemID uint64, kind model.SwipeKind, direction model.SwipeDirection) (*SwipeResult, error) {
	if swiperUID == "" || itemID == 0 || !kind.Valid() || !direction.Valid() {
		return nil, ErrInvalidSwipe
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.Status != model.ItemStatusAvailable {
		return nil, ErrItemNotFound
	}
	if item.OwnerUID == swiperUID {
		return nil, ErrSelfSwipe
	}

	swipe := &model.SwipeEvent{
		SwiperUID:      swiperUID,
		TargetItemID:   item.ID,
		TargetOwnerUID: item.OwnerUID,
		Kind:           kind,
		Direction:      direction,
	}
	if err := s.swipeRepo.Create(ctx, swipe); err != nil {
		return nil, err
	}

	result := &SwipeResult{Swipe: swipe, Outcome: SwipeOutcomeNone}
	if !direction.Positive() {
		return result, nil
	}

	match, outcome, err := s.detectMatch(ctx, swipe)
	if err != nil {
		// The swipe is already durable; it stays the source of truth for a
		// future completing swipe, so the request still succeeds.
		logrus.WithError(err).WithFields(logrus.Fields{
			"swiper": swiperUID,
			"item":   itemID,
		}).Error("match detection failed, swipe preserved")
		return result, nil
	}
	result.Match = match
	result.Outcome = outcome
	return result, nil
}

// detectMatch runs steps finder -> dedup -> factory for a freshly persisted
// positive swipe.
func (s *swipeService) detectMatch(ctx context.Context, swipe *model.SwipeEvent) (*model.Match, SwipeOutcome, error) {
	complement, err := s.swipeRepo.FindLatestComplement(ctx, swipe.TargetOwnerUID, swipe.SwiperUID, model.OppositeKind(swipe.Kind))
	if err != nil {
		return nil, SwipeOutcomeNone, err
	}
	if complement == nil {
		return nil, SwipeOutcomeNone, nil
	}

	if existing, err := s.matchRepo.FindOpenByPair(ctx, swipe.SwiperUID, swipe.TargetOwnerUID); err != nil {
		return nil, SwipeOutcomeNone, err
	} else if existing != nil {
		return existing, SwipeOutcomeAlreadyOpen, nil
	}

	// Side A is the completing swiper. Each side contributes the item the
	// other side swiped on.
	aItem := complement.TargetItemID
	bItem := swipe.TargetItemID
	match := &model.Match{
		UserAUID:    swipe.SwiperUID,
		UserBUID:    swipe.TargetOwnerUID,
		UserAItemID: &aItem,
		UserBItemID: &bItem,
		Status:      model.MatchStatusPending,
	}
	if err := s.matchRepo.CreateOpen(ctx, match); err != nil {
		if errors.Is(err, repository.ErrDuplicateOpenMatch) {
			// Lost the race to a concurrent completing swipe; the winner's
			// row is the match for this pair.
			winner, qerr := s.matchRepo.FindOpenByPair(ctx, swipe.SwiperUID, swipe.TargetOwnerUID)
			if qerr != nil {
				return nil, SwipeOutcomeNone, qerr
			}
			if winner == nil {
				return nil, SwipeOutcomeNone, nil
			}
			return winner, SwipeOutcomeAlreadyOpen, nil
		}
		return nil, SwipeOutcomeNone, err
	}

	if s.notify != nil {
		s.notify.Notify(ctx, match.UserAUID, "match_created", "スワップが成立しました", "相手の商品と交換できるようになりました。", match.UserAItemID, &match.ID)
		s.notify.Notify(ctx, match.UserBUID, "match_created", "スワップが成立しました", "相手の商品と交換できるようになりました。", match.UserBItemID, &match.ID)
	}
	return match, SwipeOutcomeCreated, nil
}
