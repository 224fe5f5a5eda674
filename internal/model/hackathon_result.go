package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HackathonResult 黑客松项目的投票与资金分配结果，(hackathon_id, project_id) 唯一
type HackathonResult struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	HackathonID string          `json:"hackathon_id" gorm:"size:128;not null;uniqueIndex:idx_result_hack_project"`
	ProjectID   uint            `json:"project_id" gorm:"not null;uniqueIndex:idx_result_hack_project"`
	Votes       int64           `json:"votes" gorm:"default:0"`
	Rank        int             `json:"rank"`
	Funding     decimal.Decimal `json:"funding" gorm:"type:decimal(38,18);not null;default:0"`
	Distributed bool            `json:"distributed" gorm:"default:false"` // 资金分配只执行一次
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// 关联
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (HackathonResult) TableName() string {
	return "hackathon_results"
}
