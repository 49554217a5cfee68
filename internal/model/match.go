package model

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusPending MatchStatus = "pending"
	MatchStatusActive  MatchStatus = "active"
	MatchStatusClosed  MatchStatus = "closed"
)

// Open reports whether the status still blocks a new match for the pair.
func (s MatchStatus) Open() bool {
	return s == MatchStatusPending || s == MatchStatusActive
}

// Match links two users who swiped positively on each other's items. UserAUID
// is the user whose swipe completed the pair. OpenPairKey holds the normalized
// uid pair while the match is open and is cleared when it closes; the unique
// index on it is what enforces at most one open match per pair (MySQL unique
// indexes allow any number of NULLs, so closed history is unbounded).
type Match struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"`
	UserAUID    string      `gorm:"column:user_a_uid;size:128;index;not null"`
	UserBUID    string      `gorm:"column:user_b_uid;size:128;index;not null"`
	UserAItemID *uint64     `gorm:"column:user_a_item_id"`
	UserBItemID *uint64     `gorm:"column:user_b_item_id"`
	Status      MatchStatus `gorm:"column:status;size:32;not null"`
	OpenPairKey *string     `gorm:"column:open_pair_key;size:260;uniqueIndex:uniq_open_pair"`
	CreatedAt   time.Time   `gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`
}

func (Match) TableName() string {
	return "matches"
}

// PairKey normalizes an unordered uid pair into a stable key, so lookups and
// the uniqueness constraint are independent of which side completed the match.
func PairKey(uidA, uidB string) string {
	if uidA > uidB {
		uidA, uidB = uidB, uidA
	}
	return fmt.Sprintf("%s|%s", uidA, uidB)
}

// HasParticipant reports whether uid is one of the two matched users.
func (m *Match) HasParticipant(uid string) bool {
	return uid != "" && (m.UserAUID == uid || m.UserBUID == uid)
}
