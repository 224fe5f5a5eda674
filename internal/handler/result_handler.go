package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/logic"
	"github.com/openwave/ows/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ResultHandler struct {
	resultLogic *logic.ResultLogic
}

func NewResultHandler(db *gorm.DB) *ResultHandler {
	return &ResultHandler{
		resultLogic: logic.NewResultLogic(db),
	}
}

// RecordResult 投票窗口关闭后记录项目结果
func (h *ResultHandler) RecordResult(c *gin.Context) {
	var req struct {
		ProjectID uint   `json:"project_id" binding:"required"`
		Votes     int64  `json:"votes"`
		Rank      int    `json:"rank"`
		Funding   string `json:"funding"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	funding := decimal.Zero
	if req.Funding != "" {
		var err error
		funding, err = decimal.NewFromString(req.Funding)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "funding: 必须为数字")
			return
		}
	}

	result := model.HackathonResult{
		HackathonID: c.Param("id"),
		ProjectID:   req.ProjectID,
		Votes:       req.Votes,
		Rank:        req.Rank,
		Funding:     funding,
	}
	if err := h.resultLogic.RecordResult(&result); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "结果记录成功", result)
}

// GetResult 查询项目结果
func (h *ResultHandler) GetResult(c *gin.Context) {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return
	}

	result, err := h.resultLogic.GetResult(c.Param("id"), projectID)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", result)
}

// DistributeFunding 把项目奖金均分给成员
func (h *ResultHandler) DistributeFunding(c *gin.Context) {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		return
	}

	records, err := h.resultLogic.DistributeFunding(c.Param("id"), projectID)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "奖金分配成功", gin.H{
		"transactions": records,
	})
}
