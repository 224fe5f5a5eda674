package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/openwave/ows/internal/config"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/logic"
)

// SettlementConfirmJob 结算补偿任务。
// 链上转账已提交但落库中断的工单停在merge_pending，定期重新走结算补全账务。
type SettlementConfirmJob struct {
	config          *config.Config
	settlementLogic *logic.SettlementLogic
}

// NewSettlementConfirmJob 创建结算补偿任务
func NewSettlementConfirmJob(cfg *config.Config, settlementLogic *logic.SettlementLogic) *SettlementConfirmJob {
	return &SettlementConfirmJob{
		config:          cfg,
		settlementLogic: settlementLogic,
	}
}

// GetName 获取任务名称
func (j *SettlementConfirmJob) GetName() string {
	return "settlement_confirm_job"
}

// GetSchedule 获取调度配置
func (j *SettlementConfirmJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *SettlementConfirmJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	settled, err := j.settlementLogic.ConfirmPendingSettlements(ctx)
	if err != nil {
		logger.Error("Settlement confirm job failed: %v", err)
		return
	}
	if settled > 0 {
		logger.Info("Settlement confirm job completed %d pending settlements", settled)
	}
}
