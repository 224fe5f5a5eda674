package logic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResultLogic 黑客松结果与资金分配业务逻辑
type ResultLogic struct {
	db *gorm.DB
}

// NewResultLogic 创建结果业务逻辑
func NewResultLogic(db *gorm.DB) *ResultLogic {
	return &ResultLogic{db: db}
}

// RecordResult 投票窗口关闭后记录项目结果，(hackathon, project)唯一
func (r *ResultLogic) RecordResult(result *model.HackathonResult) error {
	if result.HackathonID == "" {
		return apperr.NewValidation("hackathon_id", "不能为空")
	}
	if result.Funding.IsNegative() {
		return apperr.NewValidation("funding", "不能为负数")
	}

	var project model.Project
	if err := r.db.First(&project, result.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrProjectNotFound
		}
		return err
	}

	if err := r.db.Create(result).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.NewValidation("project_id", "该项目结果已记录")
		}
		return fmt.Errorf("记录结果失败: %w", err)
	}

	return nil
}

// GetResult 查询项目结果
func (r *ResultLogic) GetResult(hackathonID string, projectID uint) (*model.HackathonResult, error) {
	var result model.HackathonResult
	err := r.db.First(&result, "hackathon_id = ? AND project_id = ?", hackathonID, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrResultNotFound
		}
		return nil, err
	}
	return &result, nil
}

// DistributeFunding 把项目奖金均分给成员并入账，整个分配只执行一次。
// distributed 标记在同一事务内翻转，重复调用大声失败。
func (r *ResultLogic) DistributeFunding(hackathonID string, projectID uint) ([]model.WalletTransaction, error) {
	result, err := r.GetResult(hackathonID, projectID)
	if err != nil {
		return nil, err
	}
	if result.Distributed {
		return nil, apperr.NewValidation("distributed", "该项目奖金已分配")
	}
	if result.Funding.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.NewValidation("funding", "无可分配奖金")
	}

	var project model.Project
	if err := r.db.First(&project, projectID).Error; err != nil {
		return nil, apperr.ErrProjectNotFound
	}

	members := splitMembers(project.Owner, project.Members)
	if len(members) == 0 {
		return nil, apperr.NewValidation("members", "项目无成员")
	}

	// 均分，份额向下截断到18位。截断保证 share*(n-1) <= Funding，
	// 最后一位成员吸收的尾差恒为正，不会出现负数入账。
	count := decimal.NewFromInt(int64(len(members)))
	share, _ := result.Funding.QuoRem(count, 18)
	lastShare := result.Funding.Sub(share.Mul(decimal.NewFromInt(int64(len(members) - 1))))

	var records []model.WalletTransaction
	err = r.db.Transaction(func(tx *gorm.DB) error {
		// 先占住distributed标记，并发分配只有一个能成功
		res := tx.Model(&model.HackathonResult{}).
			Where("id = ? AND distributed = ?", result.ID, false).
			Update("distributed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NewValidation("distributed", "该项目奖金已分配")
		}

		reference := fmt.Sprintf("hackathon:%s:project:%d", hackathonID, projectID)
		for i, member := range members {
			amount := share
			if i == len(members)-1 {
				amount = lastShare
			}
			// 奖金小于成员数*1e-18时截断后的份额为零，跳过而不是写零额流水
			if !amount.IsPositive() {
				continue
			}
			record, err := applyTransaction(tx, member, amount, model.TransactionTypeReceive, reference)
			if err != nil {
				return fmt.Errorf("成员 %s 入账失败: %w", member, err)
			}
			records = append(records, *record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Distributed %s among %d members of project %d",
		result.Funding.String(), len(members), projectID)
	return records, nil
}

// splitMembers 合并owner与成员列表并去重
func splitMembers(owner, members string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	add(owner)
	for _, m := range strings.Split(members, ",") {
		add(m)
	}
	return out
}
