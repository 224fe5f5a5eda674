package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/openwave/ows/internal/config"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Notifier 尽力而为的Webhook通知器。投递在协程池内异步执行，
// 失败只记录，绝不影响触发它的主操作。
type Notifier struct {
	db         *gorm.DB
	url        string
	pool       *ants.Pool
	httpClient *http.Client
}

// NewNotifier 创建通知器
func NewNotifier(db *gorm.DB, cfg config.WebhookConfig) (*Notifier, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 8
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &Notifier{
		db:         db,
		url:        cfg.Url,
		pool:       pool,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Notify 异步投递事件通知
func (n *Notifier) Notify(event string, payload interface{}) {
	if n.url == "" {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("Failed to marshal webhook payload for %s: %v", event, err)
		return
	}

	delivery := model.WebhookDelivery{
		Event:   event,
		Payload: string(data),
		Status:  "pending",
	}
	if err := n.db.Create(&delivery).Error; err != nil {
		logger.Warn("Failed to record webhook delivery for %s: %v", event, err)
	}

	submitErr := n.pool.Submit(func() {
		n.deliver(&delivery, event, data)
	})
	if submitErr != nil {
		logger.Warn("Failed to submit webhook delivery for %s: %v", event, submitErr)
	}
}

// deliver 执行单次投递，自带错误边界
func (n *Notifier) deliver(delivery *model.WebhookDelivery, event string, data []byte) {
	body, _ := json.Marshal(map[string]interface{}{
		"event":   event,
		"payload": json.RawMessage(data),
	})

	resp, err := n.httpClient.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		n.markFailed(delivery, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.markFailed(delivery, resp.Status)
		return
	}

	if delivery.ID != 0 {
		if err := n.db.Model(delivery).Update("status", "delivered").Error; err != nil {
			logger.Warn("Failed to mark webhook delivery %d delivered: %v", delivery.ID, err)
		}
	}
	logger.Debug("Delivered webhook event %s", event)
}

// markFailed 标记投递失败
func (n *Notifier) markFailed(delivery *model.WebhookDelivery, reason string) {
	logger.Warn("Webhook delivery for %s failed: %s", delivery.Event, reason)
	if delivery.ID == 0 {
		return
	}
	updates := map[string]interface{}{"status": "failed", "error": reason}
	if err := n.db.Model(delivery).Updates(updates).Error; err != nil {
		logger.Warn("Failed to mark webhook delivery %d failed: %v", delivery.ID, err)
	}
}

// Close 释放协程池
func (n *Notifier) Close() {
	n.pool.Release()
}
