package model

import (
	"time"
)

// Certificate 参赛证书。(project_id, issued_to) 唯一，首次生成后不可变。
type Certificate struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID uint      `json:"project_id" gorm:"not null;uniqueIndex:idx_cert_project_user"`
	IssuedTo  string    `json:"issued_to" gorm:"size:64;not null;uniqueIndex:idx_cert_project_user"`
	IpfsHash  string    `json:"ipfs_hash" gorm:"size:128;not null"`
	URL       string    `json:"url" gorm:"size:256;not null"`
	Rank      int       `json:"rank"` // 0 表示未获名次
	CreatedAt time.Time `json:"created_at"`

	// 关联
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Certificate) TableName() string {
	return "project_certificates"
}
