package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openwave/ows/internal/logic"
)

type RewardHandler struct {
	settlementLogic *logic.SettlementLogic
}

func NewRewardHandler(settlementLogic *logic.SettlementLogic) *RewardHandler {
	return &RewardHandler{settlementLogic: settlementLogic}
}

// GetRewards 查询已支付赏金，可按贡献者过滤
func (h *RewardHandler) GetRewards(c *gin.Context) {
	contributor := c.Query("contributor")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	rewards, total, err := h.settlementLogic.GetRewards(contributor, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"rewards":    rewards,
		"pagination": NewPagination(page, pageSize, total),
	})
}
