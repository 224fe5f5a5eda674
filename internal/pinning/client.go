package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/config"
)

// Pinner 内容寻址固定服务接口
type Pinner interface {
	PinFile(ctx context.Context, name string, data []byte) (string, error)
	GatewayURL(cid string) string
}

// Client 对接Pinata兼容固定服务的客户端。
// 支持两种凭证模式：API Key/Secret 或 Bearer Token，协议相同。
type Client struct {
	apiUrl     string
	apiKey     string
	apiSecret  string
	jwt        string
	gatewayUrl string
	httpClient *http.Client
}

// NewClient 创建固定服务客户端
func NewClient(cfg config.PinningConfig) *Client {
	return &Client{
		apiUrl:     cfg.ApiUrl,
		apiKey:     cfg.ApiKey,
		apiSecret:  cfg.ApiSecret,
		jwt:        cfg.Jwt,
		gatewayUrl: cfg.GatewayUrl,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinFile 上传文件到固定服务，返回内容标识(CID)
func (c *Client) PinFile(ctx context.Context, name string, data []byte) (string, error) {
	if c.jwt == "" && (c.apiKey == "" || c.apiSecret == "") {
		return "", apperr.ErrNoCredentials
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}

	meta, _ := json.Marshal(map[string]interface{}{"name": name})
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiUrl+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	// 优先使用Bearer Token，否则回退到Key/Secret头
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	} else {
		req.Header.Set("pinata_api_key", c.apiKey)
		req.Header.Set("pinata_secret_api_key", c.apiSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &apperr.ConnectivityError{Op: "pin file", Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &apperr.ConnectivityError{
			Op:  "pin file",
			Err: fmt.Errorf("pinning service returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var out pinResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to decode pinning response: %w", err)
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("pinning service returned empty content hash")
	}

	return out.IpfsHash, nil
}

// GatewayURL 根据CID构造公开访问地址
func (c *Client) GatewayURL(cid string) string {
	return fmt.Sprintf("%s/%s", c.gatewayUrl, cid)
}
