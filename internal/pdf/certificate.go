package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// CertificateData 证书渲染字段
type CertificateData struct {
	Recipient string
	Project   string
	Hackathon string
	Rank      int // 0 表示未获名次
	Date      time.Time
}

// Renderer 证书渲染接口
type Renderer interface {
	Render(data CertificateData) ([]byte, error)
}

// CertificateRenderer 固定版式的A4横向证书渲染器
type CertificateRenderer struct{}

// NewCertificateRenderer 创建证书渲染器
func NewCertificateRenderer() *CertificateRenderer {
	return &CertificateRenderer{}
}

// Render 渲染证书PDF字节
func (r *CertificateRenderer) Render(data CertificateData) ([]byte, error) {
	if data.Recipient == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	if data.Project == "" {
		return nil, fmt.Errorf("project is required")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Participation", false)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	// 外边框
	pdf.SetLineWidth(1.2)
	pdf.SetDrawColor(30, 64, 175)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")
	pdf.SetLineWidth(0.4)
	pdf.Rect(13, 13, pageW-26, pageH-26, "D")

	// 标题
	pdf.SetY(35)
	pdf.SetFont("Helvetica", "B", 34)
	pdf.SetTextColor(30, 64, 175)
	pdf.CellFormat(0, 16, "Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 10, "This certificate is proudly presented to", "", 1, "C", false, 0, "")

	// 受证人
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 14, data.Recipient, "", 1, "C", false, 0, "")

	// 项目与黑客松
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(80, 80, 80)
	line := fmt.Sprintf("for building %s", data.Project)
	if data.Hackathon != "" {
		line = fmt.Sprintf("for building %s at %s", data.Project, data.Hackathon)
	}
	pdf.CellFormat(0, 10, line, "", 1, "C", false, 0, "")

	// 名次（可选）
	if data.Rank > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetTextColor(180, 120, 0)
		pdf.CellFormat(0, 10, fmt.Sprintf("Rank #%d", data.Rank), "", 1, "C", false, 0, "")
	}

	// 日期
	date := data.Date
	if date.IsZero() {
		date = time.Now()
	}
	pdf.SetY(pageH - 40)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 8, date.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "openwave", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	return buf.Bytes(), nil
}
