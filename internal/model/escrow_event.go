package model

import (
	"time"
)

// EscrowEvent 托管合约链上事件记录，(tx_hash, log_index) 去重
type EscrowEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Contract  string    `json:"contract" gorm:"size:64;not null"` // 合约名（维护者）
	EventType string    `json:"event_type" gorm:"size:32;not null;index"`
	TxHash    string    `json:"tx_hash" gorm:"size:80;not null;uniqueIndex:idx_event_tx_log"`
	BlockNum  int64     `json:"block_num" gorm:"not null"`
	LogIndex  int64     `json:"log_index" gorm:"not null;uniqueIndex:idx_event_tx_log"`
	Data      string    `json:"data" gorm:"type:text"` // 解析后的事件参数JSON
	CreatedAt time.Time `json:"created_at"`
}

func (EscrowEvent) TableName() string {
	return "escrow_events"
}
