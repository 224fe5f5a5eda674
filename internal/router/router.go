package router

import (
	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/chain"
	"github.com/openwave/ows/internal/handler"
	"github.com/openwave/ows/internal/logic"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, chainManager *chain.Manager,
	settlementLogic *logic.SettlementLogic, certificateLogic *logic.CertificateLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":  "ok",
			"service": "openwave-settlement",
		}
		if chainManager != nil {
			status["chain"] = chainManager.GetHealthStatus()
		}
		c.JSON(200, status)
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 钱包账本
		walletHandler := handler.NewWalletHandler(db)
		wallets := v1.Group("/wallets")
		{
			wallets.POST("", walletHandler.CreateWallet)
			wallets.GET("/:username", walletHandler.GetWallet)
			wallets.GET("/:username/transactions", walletHandler.GetTransactions)
			wallets.POST("/:username/transactions", walletHandler.RecordTransaction)
		}

		// 赏金工单与结算
		issueHandler := handler.NewIssueHandler(logic.NewIssueLogic(db), settlementLogic)
		issues := v1.Group("/issues")
		{
			issues.POST("", issueHandler.CreateIssue)
			issues.GET("", issueHandler.GetIssues)
			issues.GET("/:id", issueHandler.GetIssue)
			issues.POST("/:id/fund", issueHandler.FundIssue)
			issues.POST("/:id/merge-pending", issueHandler.MarkMergePending)
			issues.POST("/:id/settle", issueHandler.SettleIssue)
		}

		// 已支付赏金
		rewardHandler := handler.NewRewardHandler(settlementLogic)
		v1.GET("/rewards", rewardHandler.GetRewards)

		// 黑客松项目
		projectHandler := handler.NewProjectHandler(db)
		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:id", projectHandler.GetProject)
		}

		// 参赛证书
		certificateHandler := handler.NewCertificateHandler(certificateLogic)
		certificates := v1.Group("/certificates")
		{
			certificates.POST("", certificateHandler.GenerateCertificate)
			certificates.GET("/:projectId/:username", certificateHandler.GetCertificate)
		}

		// 黑客松结果与资金分配
		resultHandler := handler.NewResultHandler(db)
		hackathons := v1.Group("/hackathons")
		{
			hackathons.POST("/:id/results", resultHandler.RecordResult)
			hackathons.GET("/:id/results/:projectId", resultHandler.GetResult)
			hackathons.POST("/:id/results/:projectId/distribute", resultHandler.DistributeFunding)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
