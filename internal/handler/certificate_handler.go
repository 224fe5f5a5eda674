package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/logic"
)

type CertificateHandler struct {
	certificateLogic *logic.CertificateLogic
}

func NewCertificateHandler(certificateLogic *logic.CertificateLogic) *CertificateHandler {
	return &CertificateHandler{certificateLogic: certificateLogic}
}

// GenerateCertificate 为项目成员签发证书。重复请求返回已有证书。
func (h *CertificateHandler) GenerateCertificate(c *gin.Context) {
	var req struct {
		ProjectID uint   `json:"project_id" binding:"required"`
		Username  string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cert, err := h.certificateLogic.GenerateCertificate(c.Request.Context(), req.ProjectID, req.Username)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "证书签发成功", cert)
}

// GetCertificate 查询证书
func (h *CertificateHandler) GetCertificate(c *gin.Context) {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return
	}

	cert, err := h.certificateLogic.GetCertificate(projectID, c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", cert)
}
