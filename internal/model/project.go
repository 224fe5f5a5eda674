package model

import (
	"time"

	"gorm.io/gorm"
)

// Project 黑客松参赛项目
type Project struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name      string `json:"name" gorm:"not null"`
	Hackathon string `json:"hackathon" gorm:"size:128;not null;index"`
	Owner     string `json:"owner" gorm:"size:64;not null"`
	RepoURL   string `json:"repo_url" gorm:"size:256"`
	Members   string `json:"members" gorm:"type:text"` // 逗号分隔的成员用户名

	// 关联
	Certificates []Certificate `json:"certificates,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return "projects"
}
