package model

import "time"

type ExchangeMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID   uint64    `gorm:"column:match_id;index" json:"matchId"`
	SenderUID string    `gorm:"column:sender_uid;size:128;index" json:"senderUid"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (ExchangeMessage) TableName() string {
	return "exchange_messages"
}
