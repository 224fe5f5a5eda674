package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Issue 带赏金的工单
type Issue struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 基本信息
	Repository  string `json:"repository" gorm:"size:256;not null"` // owner/repo
	Number      int    `json:"number" gorm:"not null"`              // 上游工单号
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Difficulty  string `json:"difficulty" gorm:"size:16"`
	Priority    string `json:"priority" gorm:"size:16"`

	// 赏金信息
	RewardAmount decimal.Decimal `json:"reward_amount" gorm:"type:decimal(38,18);not null"`
	Maintainer   string          `json:"maintainer" gorm:"size:64;not null;index"`
	Contributor  string          `json:"contributor" gorm:"size:64;index"` // 进入merge_pending后填写
	PRNumber     int             `json:"pr_number"`
	Recipient    string          `json:"recipient" gorm:"size:64"` // 贡献者收款地址

	// 状态
	Status IssueStatus `json:"status" gorm:"size:16;default:'open';index"`
	Active bool        `json:"active" gorm:"default:true;index"` // 结算后翻为false

	// 区块链信息
	DepositTxHash string `json:"deposit_tx_hash" gorm:"size:80"`
	ForwardTxHash string `json:"forward_tx_hash" gorm:"size:80"`
}

func (Issue) TableName() string {
	return "issues"
}

// IssueStatus 工单结算状态机
type IssueStatus string

const (
	IssueStatusOpen         IssueStatus = "open"          // 已创建，未注资
	IssueStatusFunded       IssueStatus = "funded"        // 托管注资已确认
	IssueStatusMergePending IssueStatus = "merge_pending" // PR等待合并确认
	IssueStatusSettled      IssueStatus = "settled"       // 已结算
)
