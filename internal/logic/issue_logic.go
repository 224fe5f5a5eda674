package logic

import (
	"errors"
	"fmt"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IssueLogic 赏金工单业务逻辑
type IssueLogic struct {
	db *gorm.DB
}

// NewIssueLogic 创建赏金工单业务逻辑
func NewIssueLogic(db *gorm.DB) *IssueLogic {
	return &IssueLogic{db: db}
}

// CreateIssue 维护者创建赏金工单
func (l *IssueLogic) CreateIssue(issue *model.Issue) error {
	if err := l.validateIssue(issue); err != nil {
		return err
	}

	// 设置默认值
	issue.Status = model.IssueStatusOpen
	issue.Active = true

	if err := l.db.Create(issue).Error; err != nil {
		return fmt.Errorf("创建工单失败: %w", err)
	}

	return nil
}

// GetIssue 获取工单详情
func (l *IssueLogic) GetIssue(id uint) (*model.Issue, error) {
	var issue model.Issue
	if err := l.db.First(&issue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrIssueNotFound
		}
		return nil, fmt.Errorf("获取工单失败: %w", err)
	}
	return &issue, nil
}

// GetIssues 获取工单列表。activeOnly为true时只返回未结算的开放赏金。
func (l *IssueLogic) GetIssues(activeOnly bool, repository string, page, pageSize int) ([]model.Issue, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := l.db.Model(&model.Issue{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if repository != "" {
		query = query.Where("repository = ?", repository)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var issues []model.Issue
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&issues).Error
	if err != nil {
		return nil, 0, err
	}

	return issues, total, nil
}

// validateIssue 验证工单数据
func (l *IssueLogic) validateIssue(issue *model.Issue) error {
	if issue.Repository == "" {
		return apperr.NewValidation("repository", "不能为空")
	}
	if issue.Title == "" {
		return apperr.NewValidation("title", "不能为空")
	}
	if issue.Maintainer == "" {
		return apperr.NewValidation("maintainer", "不能为空")
	}
	if issue.RewardAmount.LessThanOrEqual(decimal.Zero) {
		return apperr.NewValidation("reward_amount", "必须大于0")
	}
	return nil
}
