package logic

import (
	"errors"
	"fmt"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/model"
	"gorm.io/gorm"
)

// ProjectLogic 黑客松项目业务逻辑
type ProjectLogic struct {
	db *gorm.DB
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// CreateProject 提交参赛项目
func (p *ProjectLogic) CreateProject(project *model.Project) error {
	if project.Name == "" {
		return apperr.NewValidation("name", "不能为空")
	}
	if project.Hackathon == "" {
		return apperr.NewValidation("hackathon", "不能为空")
	}
	if project.Owner == "" {
		return apperr.NewValidation("owner", "不能为空")
	}

	if err := p.db.Create(project).Error; err != nil {
		return fmt.Errorf("创建项目失败: %w", err)
	}

	return nil
}

// GetProject 获取项目详情
func (p *ProjectLogic) GetProject(id uint) (*model.Project, error) {
	var project model.Project
	if err := p.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProjectNotFound
		}
		return nil, fmt.Errorf("获取项目失败: %w", err)
	}
	return &project, nil
}

// GetProjects 按黑客松查询项目列表
func (p *ProjectLogic) GetProjects(hackathon string) ([]model.Project, error) {
	var projects []model.Project
	query := p.db.Model(&model.Project{})
	if hackathon != "" {
		query = query.Where("hackathon = ?", hackathon)
	}
	if err := query.Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}
	return projects, nil
}
