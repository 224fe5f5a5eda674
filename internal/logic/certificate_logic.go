package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/model"
	"github.com/openwave/ows/internal/pdf"
	"github.com/openwave/ows/internal/pinning"
	"gorm.io/gorm"
)

// CertificateLogic 证书签发流水线：渲染PDF -> 上传固定服务 -> 落库。
// 同一(project, user)重复请求直接返回已有证书，不重新生成也不重新上传。
type CertificateLogic struct {
	db       *gorm.DB
	renderer pdf.Renderer
	pinner   pinning.Pinner
}

// NewCertificateLogic 创建证书签发逻辑
func NewCertificateLogic(db *gorm.DB, renderer pdf.Renderer, pinner pinning.Pinner) *CertificateLogic {
	return &CertificateLogic{
		db:       db,
		renderer: renderer,
		pinner:   pinner,
	}
}

// GenerateCertificate 为项目成员签发证书
func (c *CertificateLogic) GenerateCertificate(ctx context.Context, projectID uint, username string) (*model.Certificate, error) {
	if username == "" {
		return nil, apperr.NewValidation("username", "不能为空")
	}

	// 幂等快路径：已签发过的证书原样返回
	var existing model.Certificate
	err := c.db.First(&existing, "project_id = ? AND issued_to = ?", projectID, username).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var project model.Project
	if err := c.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProjectNotFound
		}
		return nil, err
	}

	// 名次来自该项目所属黑客松的结果（若有）
	rank := 0
	var result model.HackathonResult
	err = c.db.First(&result, "project_id = ? AND hackathon_id = ?", projectID, project.Hackathon).Error
	if err == nil {
		rank = result.Rank
	}

	data, err := c.renderer.Render(pdf.CertificateData{
		Recipient: username,
		Project:   project.Name,
		Hackathon: project.Hackathon,
		Rank:      rank,
		Date:      time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("证书渲染失败: %w", err)
	}

	filename := fmt.Sprintf("certificate-%d-%s.pdf", projectID, sanitizeFilename(username))
	cid, err := c.pinner.PinFile(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		ProjectID: projectID,
		IssuedTo:  username,
		IpfsHash:  cid,
		URL:       c.pinner.GatewayURL(cid),
		Rank:      rank,
	}
	if err := c.db.Create(cert).Error; err != nil {
		// 并发请求抢先写入时返回已有行。多固定一份文件是可接受的浪费。
		if isUniqueViolation(err) {
			var winner model.Certificate
			if ferr := c.db.First(&winner, "project_id = ? AND issued_to = ?", projectID, username).Error; ferr == nil {
				return &winner, nil
			}
		}
		return nil, err
	}

	logger.Info("Issued certificate for project %d to %s (cid %s)", projectID, username, cid)
	return cert, nil
}

// GetCertificate 查询证书
func (c *CertificateLogic) GetCertificate(projectID uint, username string) (*model.Certificate, error) {
	var cert model.Certificate
	err := c.db.First(&cert, "project_id = ? AND issued_to = ?", projectID, username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrCertificateNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// sanitizeFilename 清理文件名中的路径分隔符
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, "\\", "_")
}
