package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/chain"
	"github.com/openwave/ows/internal/config"
	"github.com/openwave/ows/internal/database"
	"github.com/openwave/ows/internal/escrow"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/logic"
	"github.com/openwave/ows/internal/monitor"
	"github.com/openwave/ows/internal/notify"
	"github.com/openwave/ows/internal/pdf"
	"github.com/openwave/ows/internal/pinning"
	"github.com/openwave/ows/internal/router"
	"github.com/openwave/ows/internal/scm"
	"github.com/openwave/ows/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	setupLogger(cfg)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链管理器与托管合约
	chainManager, err := chain.NewManager(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain manager: %v", err)
	}
	defer chainManager.Close()

	// 初始化外部服务客户端
	escrowAdapter := escrow.NewAdapter(chainManager)
	scmClient := scm.NewGithubClient(cfg.Scm)
	pinner := pinning.NewClient(cfg.Pinning)

	// webhook通知器，未配置URL时退化为空实现
	var notifier logic.EventNotifier
	if cfg.Webhook.Url != "" {
		n, err := notify.NewNotifier(db, cfg.Webhook)
		if err != nil {
			logger.Fatal("Failed to initialize webhook notifier: %v", err)
		}
		defer n.Close()
		notifier = n
	}

	// 组装业务逻辑
	settlementLogic := logic.NewSettlementLogic(db, escrowAdapter, scmClient, notifier)
	certificateLogic := logic.NewCertificateLogic(db, pdf.NewCertificateRenderer(), pinner)

	// 启动事件监控
	eventMonitor := monitor.NewEventMonitor(chainManager, db,
		time.Duration(cfg.Task.Interval)*time.Second)
	if err := eventMonitor.Start(); err != nil {
		logger.Error("Failed to start event monitor: %v", err)
	} else {
		defer eventMonitor.Stop()
	}

	// 启动后台任务
	taskManager := task.Start(cfg, settlementLogic)
	defer taskManager.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由并启动服务器
	r := router.Setup(db, chainManager, settlementLogic, certificateLogic)

	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// setupLogger 按配置初始化全局日志器
func setupLogger(cfg *config.Config) {
	level := logger.ParseLogLevel(cfg.Log.Level)

	var l *logger.Logger
	var err error
	if cfg.Log.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.Log.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
