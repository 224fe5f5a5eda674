package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reward 已支付赏金记录。issue_id 唯一索引保证同一工单不会重复结算。
type Reward struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	IssueID     uint            `json:"issue_id" gorm:"not null;uniqueIndex"`
	Repository  string          `json:"repository" gorm:"size:256;not null"`
	Contributor string          `json:"contributor" gorm:"size:64;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(38,18);not null"`
	TxHash      string          `json:"tx_hash" gorm:"size:80"`
	SettledAt   time.Time       `json:"settled_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (Reward) TableName() string {
	return "rewards"
}
