package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/ymatsuda/torikae-backend/internal/model"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	m.Run()
}

type swipeFixture struct {
	items   *fakeItemRepo
	swipes  *fakeSwipeRepo
	matches *fakeMatchRepo
	svc     SwipeService
}

func newSwipeFixture() *swipeFixture {
	items := newFakeItemRepo()
	swipes := newFakeSwipeRepo()
	matches := newFakeMatchRepo()
	notify := NewNotificationService(newFakeNotificationRepo())
	return &swipeFixture{
		items:   items,
		swipes:  swipes,
		matches: matches,
		svc:     NewSwipeService(items, swipes, matches, notify),
	}
}

func TestRecordSwipeValidation(t *testing.T) {
	f := newSwipeFixture()
	itemID := f.items.add("alice", "Bike")

	tests := []struct {
		name      string
		uid       string
		itemID    uint64
		kind      model.SwipeKind
		direction model.SwipeDirection
		wantErr   error
	}{
		{"missing uid", "", itemID, model.SwipeKindSupply, model.SwipeDirectionLike, ErrInvalidSwipe},
		{"zero item", "bob", 0, model.SwipeKindSupply, model.SwipeDirectionLike, ErrInvalidSwipe},
		{"bad kind", "bob", itemID, model.SwipeKind("up"), model.SwipeDirectionLike, ErrInvalidSwipe},
		{"bad direction", "bob", itemID, model.SwipeKindSupply, model.SwipeDirection("meh"), ErrInvalidSwipe},
		{"unknown item", "bob", 9999, model.SwipeKindSupply, model.SwipeDirectionLike, ErrItemNotFound},
		{"self swipe", "alice", itemID, model.SwipeKindSupply, model.SwipeDirectionLike, ErrSelfSwipe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordSwipe(context.Background(), tt.uid, tt.itemID, tt.kind, tt.direction)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
		})
	}
	if f.swipes.count() != 0 {
		t.Fatalf("rejected swipes must not be persisted, got %d rows", f.swipes.count())
	}
}

func TestRecordSwipeUnavailableItem(t *testing.T) {
	f := newSwipeFixture()
	itemID := f.items.add("alice", "Bike")
	item, _ := f.items.FindByID(context.Background(), itemID)
	item.Status = model.ItemStatusSwapped
	_ = f.items.Update(context.Background(), item)

	_, err := f.svc.RecordSwipe(context.Background(), "bob", itemID, model.SwipeKindSupply, model.SwipeDirectionLike)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err=%v want=%v", err, ErrItemNotFound)
	}
}

func TestNegativeSwipeNeverMatches(t *testing.T) {
	f := newSwipeFixture()
	bike := f.items.add("alice", "Bike")
	guitar := f.items.add("bob", "Guitar")

	// Alice already likes Bob's guitar.
	if _, err := f.svc.RecordSwipe(context.Background(), "alice", guitar, model.SwipeKindDemand, model.SwipeDirectionLike); err != nil {
		t.Fatal(err)
	}
	res, err := f.svc.RecordSwipe(context.Background(), "bob", bike, model.SwipeKindSupply, model.SwipeDirectionDislike)
	if err != nil {
		t.Fatal(err)
	}
	if res.Match != nil || res.Outcome != SwipeOutcomeNone {
		t.Fatalf("dislike must not match, got outcome=%v", res.Outcome)
	}
	if res.Swipe == nil || res.Swipe.ID == 0 {
		t.Fatal("dislike must still be recorded")
	}
	if f.matches.countAll() != 0 {
		t.Fatal("no match row expected")
	}
}

func TestSameKindDoesNotMatch(t *testing.T) {
	f := newSwipeFixture()
	bike := f.items.add("alice", "Bike")
	guitar := f.items.add("bob", "Guitar")

	if _, err := f.svc.RecordSwipe(context.Background(), "alice", guitar, model.SwipeKindDemand, model.SwipeDirectionLike); err != nil {
		t.Fatal(err)
	}
	// Same kind from the counterpart: both browsed the same context, no pair.
	res, err := f.svc.RecordSwipe(context.Background(), "bob", bike, model.SwipeKindDemand, model.SwipeDirectionLike)
	if err != nil {
		t.Fatal(err)
	}
	if res.Match != nil {
		t.Fatal("same-kind swipes must not produce a match")
	}
}

func TestMutualSwipesCreateOneMatch(t *testing.T) {
	f := newSwipeFixture()
	bike := f.items.add("alice", "Bike")
	guitar := f.items.add("bob", "Guitar")

	res, err := f.svc.RecordSwipe(context.Background(), "alice", guitar, model.SwipeKindDemand, model.SwipeDirectionLike)
	if err != nil {
		t.Fatal(err)
	}
	if res.Match != nil {
		t.Fatal("first swipe of a pair must not match")
	}

	res, err = f.svc.RecordSwipe(context.Background(), "bob", bike, model.SwipeKindSupply, model.SwipeDirectionLike)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != SwipeOutcomeCreated || res.Match == nil {
		t.Fatalf("expected created match, got outcome=%v", res.Outcome)
	}
	m := res.Match
	if m.Status != model.MatchStatusPending {
		t.Fatalf("status=%v want pending", m.Status)
	}
	// Bob completed the pair, so bob is side A and contributes the item alice
	// swiped on (his guitar); alice contributes her bike.
	if m.UserAUID != "bob" || m.UserBUID != "alice" {
		t.Fatalf("sides: a=%s b=%s", m.UserAUID, m.UserBUID)
	}
	if m.UserAItemID == nil || *m.UserAItemID != guitar {
		t.Fatalf("userAItemId=%v want %d", m.UserAItemID, guitar)
	}
	if m.UserBItemID == nil || *m.UserBItemID != bike {
		t.Fatalf("userBItemId=%v want %d", m.UserBItemID, bike)
	}
	if f.matches.countAll() != 1 {
		t.Fatalf("match rows=%d want 1", f.matches.countAll())
	}
}

func TestRepeatedCompletingSwipeIsIdempotent(t *testing.T) {
	f := newSwipeFixture()
	bike := f.items.add("alice", "Bike")
	guitar := f.items.add("bob", "Guitar")

	mustSwipe(t, f.svc, "alice", guitar, model.SwipeKindDemand, model.SwipeDirectionLike)
	first := mustSwipe(t, f.svc, "bob", bike, model.SwipeKindSupply, model.SwipeDirectionLike)
	if first.Outcome != SwipeOutcomeCreated {
		t.Fatalf("outcome=%v want created", first.Outcome)
	}

	again := mustSwipe(t, f.svc, "bob", bike, model.SwipeKindSupply, model.SwipeDirectionSuperlike)
	if again.Outcome != SwipeOutcomeAlreadyOpen {
		t.Fatalf("outcome=%v want already_open", again.Outcome)
	}
	if again.Match == nil || again.Match.ID != first.Match.ID {
		t.Fatal("repeat must return the existing match")
	}
	if f.matches.countAll() != 1 {
		t.Fatalf("match rows=%d want 1", f.matches.countAll())
	}
}

func TestLatestComplementWins(t *testing.T) {
	f := newSwipeFixture()
	bike := f.items.add("alice", "Bike")
	camera := f.items.add("alice", "Camera")
	guitar := f.items.add("bob", "Guitar")

	// Bob supply-likes alice's bike first, then her camera.
	mustSwipe(t, f.svc, "bob", bike, model.SwipeKindSupply, model.SwipeDirectionLike)
	mustSwipe(t, f.svc, "bob", camera, model.SwipeKindSupply, model.SwipeDirectionLike)

	res := mustSwipe(t, f.svc, "alice", guitar, model.SwipeKindDemand, model.SwipeDirectionLike)
	if res.Outcome != SwipeOutcomeCreated || res.Match == nil {
		t.Fatalf("outcome=%v want created", res.Outcome)
	}
	// Alice completed; she contributes the item bob's latest swipe targeted.
	if res.Match.UserAItemID == nil || *res.Match.UserAItemID != camera {
		t.Fatalf("userAItemId=%v want camera (%d)", res.Match.UserAItemID, camera)
	}
}

func TestConcurrentCompletingSwipes(t *testing.T) {
	for i := 0; i < 100; i++ {
		f := newSwipeFixture()
		bike := f.items.add("alice", "Bike")
		guitar := f.items.add("bob", "Guitar")

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordSwipe(context.Background(), "alice", guitar, model.SwipeKindDemand, model.SwipeDirectionLike)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordSwipe(context.Background(), "bob", bike, model.SwipeKindSupply, model.SwipeDirectionLike)
			errs <- err
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("iteration %d: %v", i, err)
			}
		}

		if n := f.matches.countAll(); n != 1 {
			t.Fatalf("iteration %d: match rows=%d want exactly 1", i, n)
		}
	}
}

func TestMatchingFailureKeepsSwipe(t *testing.T) {
	f := newSwipeFixture()
	bike := f.items.add("alice", "Bike")
	guitar := f.items.add("bob", "Guitar")

	mustSwipe(t, f.svc, "alice", guitar, model.SwipeKindDemand, model.SwipeDirectionLike)

	f.swipes.findErr = errors.New("storage blew up")
	res, err := f.svc.RecordSwipe(context.Background(), "bob", bike, model.SwipeKindSupply, model.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("matching failure must not fail the request: %v", err)
	}
	if res.Match != nil || res.Outcome != SwipeOutcomeNone {
		t.Fatal("degraded result must carry no match")
	}
	if res.Swipe == nil || res.Swipe.ID == 0 {
		t.Fatal("swipe must stay recorded")
	}

	// The preserved swipe completes the pair once storage recovers.
	f.swipes.findErr = nil
	res = mustSwipe(t, f.svc, "bob", bike, model.SwipeKindSupply, model.SwipeDirectionLike)
	if res.Outcome != SwipeOutcomeCreated {
		t.Fatalf("outcome=%v want created after recovery", res.Outcome)
	}
}

func mustSwipe(t *testing.T, svc SwipeService, uid string, itemID uint64, kind model.SwipeKind, direction model.SwipeDirection) *SwipeResult {
	t.Helper()
	res, err := svc.RecordSwipe(context.Background(), uid, itemID, kind, direction)
	if err != nil {
		t.Fatalf("RecordSwipe(%s, %d): %v", uid, itemID, err)
	}
	return res
}
