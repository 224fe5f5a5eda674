package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransaction 账本流水，只追加不修改，余额可由流水重建
type WalletTransaction struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Username  string          `json:"username" gorm:"size:64;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(38,18);not null"`
	Type      TransactionType `json:"type" gorm:"size:16;not null;index"`
	Reference string          `json:"reference" gorm:"size:128"` // 例如 issue_id、结算交易哈希
	CreatedAt time.Time       `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// TransactionType 流水类型
type TransactionType string

const (
	TransactionTypeReceive  TransactionType = "receive"  // 入账
	TransactionTypeWithdraw TransactionType = "withdraw" // 出账
)
