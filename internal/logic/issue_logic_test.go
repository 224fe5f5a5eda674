package logic

import (
	"testing"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIssue(t *testing.T) {
	db := setupTestDB(t)
	issueLogic := NewIssueLogic(db)

	issue := &model.Issue{
		Repository:   "openwave/core",
		Number:       42,
		Title:        "fix scheduler deadlock",
		RewardAmount: mustDecimal(t, "10"),
		Maintainer:   "maintainer1",
	}
	require.NoError(t, issueLogic.CreateIssue(issue))
	assert.Equal(t, model.IssueStatusOpen, issue.Status)
	assert.True(t, issue.Active)
}

func TestCreateIssueValidation(t *testing.T) {
	db := setupTestDB(t)
	issueLogic := NewIssueLogic(db)

	cases := []struct {
		name  string
		issue model.Issue
	}{
		{"缺少仓库", model.Issue{Title: "t", Maintainer: "m", RewardAmount: mustDecimal(t, "1")}},
		{"缺少标题", model.Issue{Repository: "o/r", Maintainer: "m", RewardAmount: mustDecimal(t, "1")}},
		{"缺少维护者", model.Issue{Repository: "o/r", Title: "t", RewardAmount: mustDecimal(t, "1")}},
		{"零赏金", model.Issue{Repository: "o/r", Title: "t", Maintainer: "m"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := issueLogic.CreateIssue(&tc.issue)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestGetIssues(t *testing.T) {
	db := setupTestDB(t)
	issueLogic := NewIssueLogic(db)

	for i, repo := range []string{"openwave/core", "openwave/core", "openwave/docs"} {
		issue := &model.Issue{
			Repository:   repo,
			Number:       i + 1,
			Title:        "issue",
			RewardAmount: mustDecimal(t, "1"),
			Maintainer:   "maintainer1",
		}
		require.NoError(t, issueLogic.CreateIssue(issue))
	}

	// 结算后的工单不再出现在活跃列表
	require.NoError(t, db.Model(&model.Issue{}).
		Where("number = ?", 1).
		Updates(map[string]interface{}{"status": model.IssueStatusSettled, "active": false}).Error)

	issues, total, err := issueLogic.GetIssues(true, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, issues, 2)

	_, total, err = issueLogic.GetIssues(false, "openwave/core", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = issueLogic.GetIssue(999)
	assert.ErrorIs(t, err, apperr.ErrIssueNotFound)
}
