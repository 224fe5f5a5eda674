package logic

import (
	"errors"
	"fmt"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletLogic 钱包账本业务逻辑
type WalletLogic struct {
	db *gorm.DB
}

// NewWalletLogic 创建钱包账本业务逻辑
func NewWalletLogic(db *gorm.DB) *WalletLogic {
	return &WalletLogic{db: db}
}

// CreateWallet 注册时创建钱包
func (w *WalletLogic) CreateWallet(username string) (*model.Wallet, error) {
	if username == "" {
		return nil, apperr.NewValidation("username", "不能为空")
	}

	wallet := model.Wallet{
		Username: username,
		Balance:  decimal.Zero,
	}
	if err := w.db.Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("创建钱包失败: %w", err)
	}

	return &wallet, nil
}

// GetWallet 获取钱包
func (w *WalletLogic) GetWallet(username string) (*model.Wallet, error) {
	var wallet model.Wallet
	if err := w.db.First(&wallet, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrWalletNotFound
		}
		return nil, fmt.Errorf("获取钱包失败: %w", err)
	}
	return &wallet, nil
}

// GetTransactions 获取钱包流水（分页，新记录在前）
func (w *WalletLogic) GetTransactions(username string, page, pageSize int) ([]model.WalletTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	query := w.db.Model(&model.WalletTransaction{}).Where("username = ?", username)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.WalletTransaction
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// RecordTransaction 记录一笔流水并更新余额。
// 先追加不可变流水行，再以十进制精确运算重算余额，余额可随时由流水对账重建。
func (w *WalletLogic) RecordTransaction(username, amount string, txType model.TransactionType, reference string) (*model.WalletTransaction, error) {
	value, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	if txType != model.TransactionTypeReceive && txType != model.TransactionTypeWithdraw {
		return nil, apperr.NewValidation("type", "必须为 receive 或 withdraw")
	}

	var record *model.WalletTransaction
	err = w.db.Transaction(func(tx *gorm.DB) error {
		record, err = applyTransaction(tx, username, value, txType, reference)
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// applyTransaction 在调用方事务内记账。余额更新持行锁，避免并发提现丢失更新。
// 流水金额恒为正，方向由类型表达。
func applyTransaction(tx *gorm.DB, username string, amount decimal.Decimal, txType model.TransactionType, reference string) (*model.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, apperr.NewValidation("amount", "必须大于0")
	}

	var wallet model.Wallet
	if err := lockForUpdate(tx).First(&wallet, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrWalletNotFound
		}
		return nil, err
	}

	var newBalance decimal.Decimal
	switch txType {
	case model.TransactionTypeReceive:
		newBalance = wallet.Balance.Add(amount)
	case model.TransactionTypeWithdraw:
		if amount.GreaterThan(wallet.Balance) {
			return nil, apperr.ErrInsufficientBalance
		}
		newBalance = wallet.Balance.Sub(amount)
	default:
		return nil, apperr.NewValidation("type", "未知流水类型")
	}

	record := model.WalletTransaction{
		Username:  username,
		Amount:    amount,
		Type:      txType,
		Reference: reference,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&model.Wallet{}).
		Where("username = ?", username).
		Update("balance", newBalance).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// lockForUpdate 行级锁。SQLite单写者无需行锁，也不支持FOR UPDATE语法。
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// parseAmount 解析并校验金额
func parseAmount(amount string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, apperr.NewValidation("amount", "必须为数字")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperr.NewValidation("amount", "必须大于0")
	}
	return value, nil
}
