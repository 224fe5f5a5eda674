package escrow

import (
	"context"
	"math/big"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/chain"
	"github.com/openwave/ows/internal/logger"
	"github.com/shopspring/decimal"
)

// Caller 托管合约操作接口，logic层依赖此接口以便注入测试替身。
// 交易方法失败时可能同时返回非空哈希：交易已上链但确认中断，
// 调用方必须持久化该哈希并在重试时走 ConfirmTx，不能重新提交。
type Caller interface {
	Deposit(ctx context.Context, maintainer string, amount decimal.Decimal) (string, error)
	Withdraw(ctx context.Context, maintainer string, amount decimal.Decimal, recipient string) (string, error)
	ForwardFunds(ctx context.Context, maintainer string, recipient string, amount decimal.Decimal) (string, error)
	ConfirmTx(ctx context.Context, txHash string) error
}

// Adapter 托管合约适配器。每次调用提交交易并等待回执确认。
type Adapter struct {
	manager *chain.Manager
}

// NewAdapter 创建托管合约适配器
func NewAdapter(manager *chain.Manager) *Adapter {
	return &Adapter{manager: manager}
}

// Deposit 维护者向托管合约注资
func (a *Adapter) Deposit(ctx context.Context, maintainer string, amount decimal.Decimal) (string, error) {
	return a.transact(ctx, maintainer, "deposit", toWei(amount))
}

// Withdraw 贡献者从托管合约提款
func (a *Adapter) Withdraw(ctx context.Context, maintainer string, amount decimal.Decimal, recipient string) (string, error) {
	return a.transact(ctx, maintainer, "withdraw", nil,
		toWei(amount), common.HexToAddress(recipient))
}

// ForwardFunds 合并确认后维护者向贡献者转账
func (a *Adapter) ForwardFunds(ctx context.Context, maintainer string, recipient string, amount decimal.Decimal) (string, error) {
	return a.transact(ctx, maintainer, "forwardFunds", nil,
		common.HexToAddress(recipient), toWei(amount))
}

// transact 提交合约交易并等待确认。只有连接类错误才带退避重试，
// 链上回滚重新提交仍会失败，直接上报。
func (a *Adapter) transact(ctx context.Context, maintainer, method string, value *big.Int, args ...interface{}) (string, error) {
	contract, err := a.manager.GetContract(maintainer)
	if err != nil {
		return "", apperr.NewValidation("maintainer", err.Error())
	}

	client := a.manager.GetClient()
	cABI := contract.GetABI()
	bound := bind.NewBoundContract(contract.GetAddress(), cABI, client, client, client)

	var tx *types.Transaction
	submit := func() error {
		auth, err := a.manager.GetAuth()
		if err != nil {
			return backoff.Permanent(&apperr.ConfigurationError{Reason: err.Error()})
		}
		auth.Context = ctx
		if value != nil {
			auth.Value = value
		}

		tx, err = bound.Transact(auth, method, args...)
		if err != nil {
			classified := Classify(method, err)
			if !apperr.IsConnectivity(classified) {
				return backoff.Permanent(classified)
			}
			logger.Warn("Transient error submitting %s for %s, will retry: %v", method, maintainer, err)
			return classified
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(submit, policy); err != nil {
		return "", err
	}

	logger.Info("Submitted %s tx %s for maintainer %s, waiting for confirmation",
		method, tx.Hash().Hex(), maintainer)

	receipt, err := a.manager.WaitForReceipt(ctx, tx.Hash())
	if err != nil {
		return tx.Hash().Hex(), &apperr.ConnectivityError{Op: method + " receipt wait", Err: err}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return tx.Hash().Hex(), &apperr.TransactionFailed{
			TxHash: tx.Hash().Hex(),
			Reason: "execution reverted",
		}
	}

	logger.Info("Confirmed %s tx %s in block %d", method, tx.Hash().Hex(), receipt.BlockNumber.Uint64())
	return tx.Hash().Hex(), nil
}

// ConfirmTx 重查已提交交易的回执。结果未知的交易由它裁决：
// 确认成功返回nil，确认回滚返回TransactionFailed，仍查不到则返回连接错误。
func (a *Adapter) ConfirmTx(ctx context.Context, txHash string) error {
	receipt, err := a.manager.WaitForReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return &apperr.ConnectivityError{Op: "receipt wait", Err: err}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return &apperr.TransactionFailed{TxHash: txHash, Reason: "execution reverted"}
	}
	return nil
}

// toWei 十进制金额转为18位精度的链上整数
func toWei(amount decimal.Decimal) *big.Int {
	return amount.Mul(decimal.New(1, 18)).BigInt()
}
