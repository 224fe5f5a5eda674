package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/escrow"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/model"
	"github.com/openwave/ows/internal/scm"
	"gorm.io/gorm"
)

// EventNotifier 尽力而为的事件通知接口，允许注入空实现
type EventNotifier interface {
	Notify(event string, payload interface{})
}

// SettlementLogic 赏金结算编排。
// 工单状态机: open -> funded -> merge_pending -> settled。
type SettlementLogic struct {
	db       *gorm.DB
	escrow   escrow.Caller
	scm      scm.Client
	notifier EventNotifier
}

// NewSettlementLogic 创建结算编排逻辑
func NewSettlementLogic(db *gorm.DB, escrowCaller escrow.Caller, scmClient scm.Client, notifier EventNotifier) *SettlementLogic {
	return &SettlementLogic{
		db:       db,
		escrow:   escrowCaller,
		scm:      scmClient,
		notifier: notifier,
	}
}

// FundIssue 维护者向托管合约注资，确认后工单进入funded状态
func (s *SettlementLogic) FundIssue(ctx context.Context, issueID uint) (*model.Issue, error) {
	issue, err := s.loadIssue(issueID)
	if err != nil {
		return nil, err
	}
	if issue.Status != model.IssueStatusOpen {
		return nil, apperr.NewValidation("status", fmt.Sprintf("工单状态为 %s，无法注资", issue.Status))
	}

	// 上次注资确认中断时哈希已留存，重试只查回执，不重新提交
	txHash := issue.DepositTxHash
	if txHash == "" {
		txHash, err = s.escrow.Deposit(ctx, issue.Maintainer, issue.RewardAmount)
		if err != nil {
			s.rememberTxHash(issue, "deposit_tx_hash", txHash, err)
			return nil, err
		}
	} else if err := s.confirmSubmitted(ctx, issue, "deposit_tx_hash", txHash); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":          model.IssueStatusFunded,
		"deposit_tx_hash": txHash,
	}
	if err := s.db.Model(issue).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新工单注资状态失败: %w", err)
	}

	logger.Info("Issue %d funded with %s by %s (tx %s)",
		issue.ID, issue.RewardAmount.String(), issue.Maintainer, txHash)
	return issue, nil
}

// MarkMergePending 记录贡献者的PR，等待合并确认
func (s *SettlementLogic) MarkMergePending(issueID uint, contributor string, prNumber int, recipient string) (*model.Issue, error) {
	if contributor == "" {
		return nil, apperr.NewValidation("contributor", "不能为空")
	}
	if prNumber <= 0 {
		return nil, apperr.NewValidation("pr_number", "必须大于0")
	}
	// 在边界上校验收款地址，不浪费一次注定回滚的链上调用
	if !common.IsHexAddress(recipient) {
		return nil, apperr.NewValidation("recipient", "必须为合法的链上地址")
	}

	issue, err := s.loadIssue(issueID)
	if err != nil {
		return nil, err
	}
	if issue.Status != model.IssueStatusFunded {
		return nil, apperr.NewValidation("status", fmt.Sprintf("工单状态为 %s，无法进入合并等待", issue.Status))
	}

	updates := map[string]interface{}{
		"status":      model.IssueStatusMergePending,
		"contributor": contributor,
		"pr_number":   prNumber,
		"recipient":   recipient,
	}
	if err := s.db.Model(issue).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新工单合并等待状态失败: %w", err)
	}

	return issue, nil
}

// Settle 结算一笔赏金。要求PR已确认合并且链上转账已确认，
// 然后在单个数据库事务内：写入Reward、记账、翻转工单状态。
// rewards.issue_id 的唯一索引保证并发重复结算会大声失败而不是重复支付。
func (s *SettlementLogic) Settle(ctx context.Context, issueID uint) (*model.Reward, error) {
	issue, err := s.loadIssue(issueID)
	if err != nil {
		return nil, err
	}

	switch issue.Status {
	case model.IssueStatusSettled:
		return nil, apperr.NewValidation("status", "工单已结算")
	case model.IssueStatusMergePending:
		// 继续
	default:
		return nil, apperr.NewValidation("status", fmt.Sprintf("工单状态为 %s，无法结算", issue.Status))
	}
	if issue.Contributor == "" {
		return nil, apperr.NewValidation("contributor", "未记录贡献者")
	}

	// 1. 合并确认
	merged, err := s.scm.IsMerged(ctx, issue.Repository, issue.PRNumber)
	if err != nil {
		return nil, err
	}
	if !merged {
		return nil, apperr.NewValidation("pr_number", "PR尚未合并")
	}

	// 2. 链上转账确认。已提交过的转账（上次结算中断）只查回执，绝不重新提交。
	txHash := issue.ForwardTxHash
	if txHash == "" {
		txHash, err = s.escrow.ForwardFunds(ctx, issue.Maintainer, issue.Recipient, issue.RewardAmount)
		if err != nil {
			// 提交后确认中断时哈希必须留存，否则重试会二次转账
			s.rememberTxHash(issue, "forward_tx_hash", txHash, err)
			return nil, err
		}
		// 先持久化交易哈希，确保落库失败后重试不会重复转账
		if err := s.db.Model(issue).Update("forward_tx_hash", txHash).Error; err != nil {
			return nil, fmt.Errorf("记录转账哈希失败: %w", err)
		}
	} else if err := s.confirmSubmitted(ctx, issue, "forward_tx_hash", txHash); err != nil {
		return nil, err
	}

	// 3. 单事务落库：Reward、贡献者入账、工单关闭
	reward := &model.Reward{
		IssueID:     issue.ID,
		Repository:  issue.Repository,
		Contributor: issue.Contributor,
		Amount:      issue.RewardAmount,
		TxHash:      txHash,
		SettledAt:   time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reward).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.NewValidation("issue_id", "工单已结算")
			}
			return err
		}

		if _, err := applyTransaction(tx, issue.Contributor, issue.RewardAmount,
			model.TransactionTypeReceive, txHash); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status": model.IssueStatusSettled,
			"active": false,
		}
		return tx.Model(&model.Issue{}).Where("id = ?", issue.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Issue %d settled: %s forwarded to %s (tx %s)",
		issue.ID, issue.RewardAmount.String(), issue.Contributor, txHash)

	// 4. 尽力而为的副作用，失败绝不影响已完成的结算
	s.closeUpstreamIssue(issue)
	if s.notifier != nil {
		s.notifier.Notify("issue.settled", map[string]interface{}{
			"issue_id":    issue.ID,
			"repository":  issue.Repository,
			"contributor": issue.Contributor,
			"amount":      issue.RewardAmount.String(),
			"tx_hash":     txHash,
		})
	}

	return reward, nil
}

// ConfirmPendingSettlements 补偿重试：转账已提交但落库未完成的工单重新走结算
func (s *SettlementLogic) ConfirmPendingSettlements(ctx context.Context) (int, error) {
	var issues []model.Issue
	err := s.db.Where("status = ? AND forward_tx_hash <> ''", model.IssueStatusMergePending).
		Find(&issues).Error
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, issue := range issues {
		if _, err := s.Settle(ctx, issue.ID); err != nil {
			logger.Error("Failed to complete settlement for issue %d: %v", issue.ID, err)
			continue
		}
		settled++
	}

	return settled, nil
}

// GetRewards 按贡献者查询已支付赏金
func (s *SettlementLogic) GetRewards(contributor string, page, pageSize int) ([]model.Reward, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&model.Reward{})
	if contributor != "" {
		query = query.Where("contributor = ?", contributor)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rewards []model.Reward
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rewards).Error
	if err != nil {
		return nil, 0, err
	}

	return rewards, total, nil
}

// rememberTxHash 链上调用结果未知时留存交易哈希。
// 只有连接类失败才留存：交易可能已上链，重试必须走回执确认而不是重新提交。
func (s *SettlementLogic) rememberTxHash(issue *model.Issue, column, txHash string, callErr error) {
	if txHash == "" || !apperr.IsConnectivity(callErr) {
		return
	}
	if err := s.db.Model(issue).Update(column, txHash).Error; err != nil {
		logger.Error("Failed to record %s %s for issue %d: %v", column, txHash, issue.ID, err)
	}
}

// confirmSubmitted 重查已提交交易的回执。确认回滚的交易清除留存的哈希，允许重新提交。
func (s *SettlementLogic) confirmSubmitted(ctx context.Context, issue *model.Issue, column, txHash string) error {
	err := s.escrow.ConfirmTx(ctx, txHash)
	if err == nil {
		return nil
	}
	if apperr.IsTransactionFailed(err) {
		logger.Warn("Submitted tx %s for issue %d reverted, clearing %s", txHash, issue.ID, column)
		if uerr := s.db.Model(issue).Update(column, "").Error; uerr != nil {
			logger.Error("Failed to clear %s for issue %d: %v", column, issue.ID, uerr)
		}
	}
	return err
}

// closeUpstreamIssue 关闭上游工单，带独立错误边界的分离任务
func (s *SettlementLogic) closeUpstreamIssue(issue *model.Issue) {
	if s.scm == nil || issue.Number <= 0 {
		return
	}
	repository, number := issue.Repository, issue.Number
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.scm.CloseIssue(ctx, repository, number); err != nil {
			logger.Warn("Failed to close upstream issue %s#%d: %v", repository, number, err)
		}
	}()
}

// loadIssue 加载工单
func (s *SettlementLogic) loadIssue(issueID uint) (*model.Issue, error) {
	var issue model.Issue
	if err := s.db.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrIssueNotFound
		}
		return nil, err
	}
	return &issue, nil
}

// isUniqueViolation 跨方言识别唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
