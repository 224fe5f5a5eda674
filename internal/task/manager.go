package task

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/openwave/ows/internal/config"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/logic"
)

// Manager 后台任务管理器
type Manager struct {
	scheduler       gocron.Scheduler
	config          *config.Config
	settlementLogic *logic.SettlementLogic
}

// NewManager 创建任务管理器
func NewManager(cfg *config.Config, settlementLogic *logic.SettlementLogic) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:       s,
		config:          cfg,
		settlementLogic: settlementLogic,
	}
}

// Start 注册所有任务并启动调度器
func Start(cfg *config.Config, settlementLogic *logic.SettlementLogic) *Manager {
	manager := NewManager(cfg, settlementLogic)
	manager.RegisterJobs()
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	m.registerSettlementConfirmJob()
}

// registerSettlementConfirmJob 注册结算补偿任务
func (m *Manager) registerSettlementConfirmJob() {
	job := NewSettlementConfirmJob(m.config, m.settlementLogic)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
