package scm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/config"
)

// Client 源码托管平台接口
type Client interface {
	IsMerged(ctx context.Context, repository string, prNumber int) (bool, error)
	CloseIssue(ctx context.Context, repository string, issueNumber int) error
}

// GithubClient GitHub REST API 客户端
type GithubClient struct {
	apiUrl     string
	token      string
	httpClient *http.Client
}

// NewGithubClient 创建GitHub客户端
func NewGithubClient(cfg config.ScmConfig) *GithubClient {
	return &GithubClient{
		apiUrl:     cfg.ApiUrl,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// IsMerged 检查PR是否已合并。GitHub对该端点返回204表示已合并，404表示未合并。
func (c *GithubClient) IsMerged(ctx context.Context, repository string, prNumber int) (bool, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d/merge", c.apiUrl, repository, prNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &apperr.ConnectivityError{Op: "check merge status", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &apperr.ConnectivityError{
			Op:  "check merge status",
			Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url),
		}
	}
}

// CloseIssue 关闭上游工单
func (c *GithubClient) CloseIssue(ctx context.Context, repository string, issueNumber int) error {
	url := fmt.Sprintf("%s/repos/%s/issues/%d", c.apiUrl, repository, issueNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url,
		strings.NewReader(`{"state":"closed"}`))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.ConnectivityError{Op: "close issue", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &apperr.ConnectivityError{
			Op:  "close issue",
			Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url),
		}
	}
	return nil
}
