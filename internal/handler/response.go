package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/logger"
)

// Response 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Pagination 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// NewPagination 构造分页信息
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// HandleError 按错误分类转换为HTTP状态码。
// 内部分类不原样暴露给终端用户，消息做了人性化处理。
func HandleError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case apperr.IsNotFound(err):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrInsufficientBalance):
		ErrorResponse(c, http.StatusUnprocessableEntity, "余额不足")
	case apperr.IsTransactionFailed(err):
		ErrorResponse(c, http.StatusBadGateway, "链上交易失败，请检查托管合约状态")
	case apperr.IsConnectivity(err):
		ErrorResponse(c, http.StatusBadGateway, "外部服务暂时不可用，请稍后重试")
	case apperr.IsConfiguration(err):
		logger.Error("Configuration error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "服务配置缺失，请联系管理员")
	default:
		logger.Error("Unexpected error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "服务器内部错误")
	}
}
