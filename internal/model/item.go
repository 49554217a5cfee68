package model

import "time"

type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusSwapped   ItemStatus = "swapped"
	ItemStatusDelisted  ItemStatus = "delisted"
)

type Item struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	OwnerUID    string     `gorm:"column:owner_uid;size:128;index;not null"`
	Title       string     `gorm:"size:120;not null"`
	Description string     `gorm:"type:text;not null"`
	ImageURL    *string    `gorm:"size:512"`
	Status      ItemStatus `gorm:"column:status;size:32;not null;default:available"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}
