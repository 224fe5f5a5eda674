package model

import (
	"time"
)

// WebhookDelivery 尽力而为通知的投递记录，失败不影响主流程
type WebhookDelivery struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Event     string    `json:"event" gorm:"size:64;not null"`
	Payload   string    `json:"payload" gorm:"type:text"`
	Status    string    `json:"status" gorm:"size:16;default:'pending'"` // pending, delivered, failed
	Error     string    `json:"error" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}
