package model

import "time"

// SwipeKind identifies which browsing context a swipe was made in. A supply
// swipe is a user browsing items they could receive; a demand swipe is a user
// browsing items they could offer. A match needs one of each, crossed between
// the two users.
type SwipeKind string

const (
	SwipeKindSupply SwipeKind = "supply"
	SwipeKindDemand SwipeKind = "demand"
)

func (k SwipeKind) Valid() bool {
	switch k {
	case SwipeKindSupply, SwipeKindDemand:
		return true
	}
	return false
}

// OppositeKind is total over the two kinds; an unknown kind maps to itself so
// a bad value can never silently widen a complement query.
func OppositeKind(k SwipeKind) SwipeKind {
	switch k {
	case SwipeKindSupply:
		return SwipeKindDemand
	case SwipeKindDemand:
		return SwipeKindSupply
	}
	return k
}

type SwipeDirection string

const (
	SwipeDirectionLike      SwipeDirection = "like"
	SwipeDirectionDislike   SwipeDirection = "dislike"
	SwipeDirectionSuperlike SwipeDirection = "superlike"
)

func (d SwipeDirection) Valid() bool {
	switch d {
	case SwipeDirectionLike, SwipeDirectionDislike, SwipeDirectionSuperlike:
		return true
	}
	return false
}

// Positive reports whether this direction can participate in a match.
func (d SwipeDirection) Positive() bool {
	return d == SwipeDirectionLike || d == SwipeDirectionSuperlike
}

// SwipeEvent is an append-only fact. Rows are never updated or deleted, and
// repeated swipes on the same item each produce a new row.
type SwipeEvent struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement"`
	SwiperUID      string         `gorm:"column:swiper_uid;size:128;index:idx_swiper_owner;not null"`
	TargetItemID   uint64         `gorm:"column:target_item_id;index;not null"`
	TargetOwnerUID string         `gorm:"column:target_owner_uid;size:128;index:idx_swiper_owner;not null"`
	Kind           SwipeKind      `gorm:"column:kind;size:16;not null"`
	Direction      SwipeDirection `gorm:"column:direction;size:16;not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (SwipeEvent) TableName() string {
	return "swipes"
}
