package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/logic"
	"github.com/openwave/ows/internal/model"
)

type IssueHandler struct {
	issueLogic      *logic.IssueLogic
	settlementLogic *logic.SettlementLogic
}

func NewIssueHandler(issueLogic *logic.IssueLogic, settlementLogic *logic.SettlementLogic) *IssueHandler {
	return &IssueHandler{
		issueLogic:      issueLogic,
		settlementLogic: settlementLogic,
	}
}

// CreateIssue 创建赏金工单
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var issue model.Issue
	if err := c.ShouldBindJSON(&issue); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.issueLogic.CreateIssue(&issue); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "工单创建成功", issue)
}

// GetIssues 获取工单列表
func (h *IssueHandler) GetIssues(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "false") == "true"
	repository := c.Query("repository")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	issues, total, err := h.issueLogic.GetIssues(activeOnly, repository, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"issues":     issues,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetIssue 获取工单详情
func (h *IssueHandler) GetIssue(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	issue, err := h.issueLogic.GetIssue(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", issue)
}

// FundIssue 维护者注资托管合约
func (h *IssueHandler) FundIssue(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	issue, err := h.settlementLogic.FundIssue(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "注资成功", issue)
}

// MarkMergePending 登记贡献者PR，进入合并等待
func (h *IssueHandler) MarkMergePending(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	var req struct {
		Contributor string `json:"contributor" binding:"required"`
		PRNumber    int    `json:"pr_number" binding:"required"`
		Recipient   string `json:"recipient"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := h.settlementLogic.MarkMergePending(id, req.Contributor, req.PRNumber, req.Recipient)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "已进入合并等待", issue)
}

// SettleIssue 结算赏金
func (h *IssueHandler) SettleIssue(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	reward, err := h.settlementLogic.Settle(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "结算成功", reward)
}

// parseID 解析路径中的数字ID，失败时直接写入400响应
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的ID")
		return 0, err
	}
	return uint(id), nil
}
