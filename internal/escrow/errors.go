package escrow

import (
	"strings"

	"github.com/openwave/ows/internal/apperr"
)

// 确定性失败的错误片段。这类失败重新提交只会再次回滚。
var revertMarkers = []string{
	"execution reverted",
	"always failing transaction",
	"insufficient funds",
	"invalid opcode",
	"gas required exceeds allowance",
	"nonce too low",
	"replacement transaction underpriced",
}

// Classify 把底层链客户端错误归入错误分类：
// 确定性回滚归为 TransactionFailed，其余视为可重试的连接错误。
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range revertMarkers {
		if strings.Contains(msg, marker) {
			return &apperr.TransactionFailed{Reason: err.Error()}
		}
	}

	return &apperr.ConnectivityError{Op: op, Err: err}
}
