package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet 用户托管余额账户
type Wallet struct {
	Username  string          `json:"username" gorm:"primaryKey;size:64"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:decimal(38,18);not null;default:0"` // 余额，任何时刻 >= 0
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// 关联
	Transactions []WalletTransaction `json:"transactions,omitempty" gorm:"foreignKey:Username;references:Username"`
}

func (Wallet) TableName() string {
	return "wallets"
}
