package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/logic"
	"github.com/openwave/ows/internal/model"
	"gorm.io/gorm"
)

type WalletHandler struct {
	walletLogic *logic.WalletLogic
}

func NewWalletHandler(db *gorm.DB) *WalletHandler {
	return &WalletHandler{
		walletLogic: logic.NewWalletLogic(db),
	}
}

// CreateWallet 创建钱包
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.walletLogic.CreateWallet(req.Username)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "钱包创建成功", wallet)
}

// GetWallet 获取钱包余额
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletLogic.GetWallet(c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", wallet)
}

// GetTransactions 获取钱包流水
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.walletLogic.GetTransactions(c.Param("username"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"transactions": records,
		"pagination":   NewPagination(page, pageSize, total),
	})
}

// RecordTransaction 手工记一笔流水（receive 或 withdraw）
func (h *WalletHandler) RecordTransaction(c *gin.Context) {
	var req struct {
		Amount    string `json:"amount" binding:"required"`
		Type      string `json:"type" binding:"required"`
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.walletLogic.RecordTransaction(
		c.Param("username"), req.Amount, model.TransactionType(req.Type), req.Reference)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "记账成功", record)
}
