package logic

import (
	"testing"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordResult(t *testing.T) {
	db := setupTestDB(t)
	resultLogic := NewResultLogic(db)
	project := createTestProject(t, db)

	result := &model.HackathonResult{
		HackathonID: "openwave-2026",
		ProjectID:   project.ID,
		Votes:       120,
		Rank:        1,
		Funding:     mustDecimal(t, "100"),
	}
	require.NoError(t, resultLogic.RecordResult(result))

	// 同一(hackathon, project)只能记录一次
	dup := &model.HackathonResult{
		HackathonID: "openwave-2026",
		ProjectID:   project.ID,
		Funding:     mustDecimal(t, "50"),
	}
	err := resultLogic.RecordResult(dup)
	assert.True(t, apperr.IsValidation(err))

	// 项目不存在
	err = resultLogic.RecordResult(&model.HackathonResult{
		HackathonID: "openwave-2026",
		ProjectID:   999,
	})
	assert.ErrorIs(t, err, apperr.ErrProjectNotFound)
}

// 奖金均分给owner与成员，总额守恒，只分配一次
func TestDistributeFunding(t *testing.T) {
	db := setupTestDB(t)
	resultLogic := NewResultLogic(db)
	walletLogic := NewWalletLogic(db)

	// 项目成员: alice(owner), bob, carol
	project := createTestProject(t, db)
	for _, member := range []string{"alice", "bob", "carol"} {
		_, err := walletLogic.CreateWallet(member)
		require.NoError(t, err)
	}

	require.NoError(t, resultLogic.RecordResult(&model.HackathonResult{
		HackathonID: "openwave-2026",
		ProjectID:   project.ID,
		Funding:     mustDecimal(t, "100"),
	}))

	records, err := resultLogic.DistributeFunding("openwave-2026", project.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// 守恒：三人余额之和等于奖金总额
	total := decimal.Zero
	for _, member := range []string{"alice", "bob", "carol"} {
		wallet, err := walletLogic.GetWallet(member)
		require.NoError(t, err)
		assert.True(t, wallet.Balance.IsPositive())
		total = total.Add(wallet.Balance)
	}
	assert.True(t, total.Equal(mustDecimal(t, "100")),
		"distributed total %s does not equal funding", total)

	// 重复分配大声失败
	_, err = resultLogic.DistributeFunding("openwave-2026", project.ID)
	assert.True(t, apperr.IsValidation(err))
}

// 奖金小到无法整除时不产生负数或零额流水，总额依然守恒
func TestDistributeFundingTinyAmount(t *testing.T) {
	db := setupTestDB(t)
	resultLogic := NewResultLogic(db)
	walletLogic := NewWalletLogic(db)

	members := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	project := &model.Project{
		Name:      "dust-splitter",
		Hackathon: "openwave-2026",
		Owner:     "m0",
		Members:   "m1,m2,m3,m4,m5,m6",
	}
	require.NoError(t, db.Create(project).Error)
	for _, member := range append([]string{"m0"}, members...) {
		_, err := walletLogic.CreateWallet(member)
		require.NoError(t, err)
	}

	// 5e-18 分给7人：截断后的人均份额为0，尾差全部归最后一位成员
	funding := mustDecimal(t, "0.000000000000000005")
	require.NoError(t, resultLogic.RecordResult(&model.HackathonResult{
		HackathonID: "openwave-2026",
		ProjectID:   project.ID,
		Funding:     funding,
	}))

	records, err := resultLogic.DistributeFunding("openwave-2026", project.ID)
	require.NoError(t, err)

	total := decimal.Zero
	for _, record := range records {
		assert.True(t, record.Amount.IsPositive(),
			"ledger entry for %s must be positive, got %s", record.Username, record.Amount)
		total = total.Add(record.Amount)
	}
	assert.True(t, total.Equal(funding), "distributed %s, funded %s", total, funding)

	for _, member := range append([]string{"m0"}, members...) {
		wallet, err := walletLogic.GetWallet(member)
		require.NoError(t, err)
		assert.False(t, wallet.Balance.IsNegative(),
			"wallet %s went negative: %s", member, wallet.Balance)
	}
}

func TestDistributeFundingNothingToDistribute(t *testing.T) {
	db := setupTestDB(t)
	resultLogic := NewResultLogic(db)
	project := createTestProject(t, db)

	require.NoError(t, resultLogic.RecordResult(&model.HackathonResult{
		HackathonID: "openwave-2026",
		ProjectID:   project.ID,
		Funding:     decimal.Zero,
	}))

	_, err := resultLogic.DistributeFunding("openwave-2026", project.ID)
	assert.True(t, apperr.IsValidation(err))
}

func TestDistributeFundingResultNotFound(t *testing.T) {
	db := setupTestDB(t)
	resultLogic := NewResultLogic(db)

	_, err := resultLogic.DistributeFunding("openwave-2026", 1)
	assert.ErrorIs(t, err, apperr.ErrResultNotFound)
}

// 分配失败时整体回滚：任一成员钱包缺失，所有人都不入账
func TestDistributeFundingRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	resultLogic := NewResultLogic(db)
	walletLogic := NewWalletLogic(db)

	project := createTestProject(t, db)
	// 只给alice开钱包，bob/carol缺失
	_, err := walletLogic.CreateWallet("alice")
	require.NoError(t, err)

	require.NoError(t, resultLogic.RecordResult(&model.HackathonResult{
		HackathonID: "openwave-2026",
		ProjectID:   project.ID,
		Funding:     mustDecimal(t, "90"),
	}))

	_, err = resultLogic.DistributeFunding("openwave-2026", project.ID)
	require.Error(t, err)

	wallet, err := walletLogic.GetWallet("alice")
	require.NoError(t, err)
	assert.True(t, wallet.Balance.IsZero(), "rollback must undo partial credits")

	// distributed标记也随事务回滚，修复后可重新分配
	var result model.HackathonResult
	require.NoError(t, db.First(&result, "project_id = ?", project.ID).Error)
	assert.False(t, result.Distributed)

	for _, member := range []string{"bob", "carol"} {
		_, err := walletLogic.CreateWallet(member)
		require.NoError(t, err)
	}
	records, err := resultLogic.DistributeFunding("openwave-2026", project.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
