package logic

import (
	"testing"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWallet(t *testing.T) {
	db := setupTestDB(t)
	walletLogic := NewWalletLogic(db)

	wallet, err := walletLogic.CreateWallet("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", wallet.Username)
	assert.True(t, wallet.Balance.IsZero())

	_, err = walletLogic.CreateWallet("")
	assert.True(t, apperr.IsValidation(err))
}

func TestGetWalletNotFound(t *testing.T) {
	db := setupTestDB(t)
	walletLogic := NewWalletLogic(db)

	_, err := walletLogic.GetWallet("nobody")
	assert.ErrorIs(t, err, apperr.ErrWalletNotFound)
}

func TestRecordTransactionReceiveAndWithdraw(t *testing.T) {
	db := setupTestDB(t)
	walletLogic := NewWalletLogic(db)

	_, err := walletLogic.CreateWallet("alice")
	require.NoError(t, err)

	_, err = walletLogic.RecordTransaction("alice", "10.5", model.TransactionTypeReceive, "issue:1")
	require.NoError(t, err)

	_, err = walletLogic.RecordTransaction("alice", "3.5", model.TransactionTypeWithdraw, "payout")
	require.NoError(t, err)

	wallet, err := walletLogic.GetWallet("alice")
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(mustDecimal(t, "7")),
		"expected balance 7, got %s", wallet.Balance)

	records, total, err := walletLogic.GetTransactions("alice", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	walletLogic := NewWalletLogic(db)

	_, err := walletLogic.CreateWallet("bob")
	require.NoError(t, err)
	_, err = walletLogic.RecordTransaction("bob", "5", model.TransactionTypeReceive, "")
	require.NoError(t, err)

	_, err = walletLogic.RecordTransaction("bob", "5.000000000000000001", model.TransactionTypeWithdraw, "")
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)

	// 拒绝的提现不留任何痕迹：无流水行、余额不变
	var count int64
	db.Model(&model.WalletTransaction{}).
		Where("username = ? AND type = ?", "bob", model.TransactionTypeWithdraw).
		Count(&count)
	assert.Equal(t, int64(0), count)

	wallet, err := walletLogic.GetWallet("bob")
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(mustDecimal(t, "5")))
}

func TestRecordTransactionValidation(t *testing.T) {
	db := setupTestDB(t)
	walletLogic := NewWalletLogic(db)

	_, err := walletLogic.CreateWallet("carol")
	require.NoError(t, err)

	cases := []struct {
		name   string
		amount string
		txType model.TransactionType
	}{
		{"非数字金额", "abc", model.TransactionTypeReceive},
		{"零金额", "0", model.TransactionTypeReceive},
		{"负金额", "-1", model.TransactionTypeReceive},
		{"未知类型", "1", model.TransactionType("transfer")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := walletLogic.RecordTransaction("carol", tc.amount, tc.txType, "")
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestRecordTransactionWalletNotFound(t *testing.T) {
	db := setupTestDB(t)
	walletLogic := NewWalletLogic(db)

	_, err := walletLogic.RecordTransaction("ghost", "1", model.TransactionTypeReceive, "")
	assert.ErrorIs(t, err, apperr.ErrWalletNotFound)
}

// 余额始终可由流水重建
func TestBalanceMatchesLedger(t *testing.T) {
	db := setupTestDB(t)
	walletLogic := NewWalletLogic(db)

	_, err := walletLogic.CreateWallet("dave")
	require.NoError(t, err)

	amounts := []struct {
		amount string
		txType model.TransactionType
	}{
		{"100", model.TransactionTypeReceive},
		{"0.000000000000000001", model.TransactionTypeReceive},
		{"33.333333333333333333", model.TransactionTypeWithdraw},
		{"12.5", model.TransactionTypeReceive},
	}
	for _, a := range amounts {
		_, err := walletLogic.RecordTransaction("dave", a.amount, a.txType, "")
		require.NoError(t, err)
	}

	var records []model.WalletTransaction
	require.NoError(t, db.Find(&records, "username = ?", "dave").Error)

	rebuilt := mustDecimal(t, "0")
	for _, r := range records {
		if r.Type == model.TransactionTypeReceive {
			rebuilt = rebuilt.Add(r.Amount)
		} else {
			rebuilt = rebuilt.Sub(r.Amount)
		}
	}

	wallet, err := walletLogic.GetWallet("dave")
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(rebuilt),
		"balance %s does not match ledger %s", wallet.Balance, rebuilt)
}
