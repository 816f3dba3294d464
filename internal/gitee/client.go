package gitee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"giteeup/internal/settings"
)

// 固定的提交信息，跟图床仓库里的历史保持一致
const commitMessage = "upload image"

// Client 封装 Gitee OpenAPI 的“新建文件”接口。
// 一次上传就是一个 POST，失败不重试。
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type createFileRequest struct {
	AccessToken string `json:"access_token"`
	Branch      string `json:"branch,omitempty"`
	Content     string `json:"content"`
	Message     string `json:"message"`
}

type createFileResponse struct {
	Content struct {
		DownloadURL string `json:"download_url"`
	} `json:"content"`
	// 失败时 Gitee 把原因放在顶层 message 里
	Message string `json:"message"`
}

// CreateFile 在 cfg.Repo 的 repoPath 处创建文件并返回 download_url。
// content 必须是纯 base64（不带 data:xxx;base64, 前缀）。
func (c *Client) CreateFile(ctx context.Context, cfg settings.Settings, repoPath, content string) (string, error) {
	body, err := json.Marshal(createFileRequest{
		AccessToken: cfg.AccessToken,
		Branch:      cfg.Branch,
		Content:     content,
		Message:     commitMessage,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v5/repos/%s/contents/%s", c.base, cfg.Repo, repoPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed createFileResponse
	// 错误响应也是 JSON，解析失败就用原始 body 兜底
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return "", fmt.Errorf("gitee: %s", strings.TrimSpace(string(raw)))
		}
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		if parsed.Message != "" {
			return "", fmt.Errorf("gitee: %s", parsed.Message)
		}
		return "", fmt.Errorf("gitee: unexpected status %d", resp.StatusCode)
	}

	if parsed.Content.DownloadURL == "" {
		return "", fmt.Errorf("gitee: response missing download_url")
	}
	return parsed.Content.DownloadURL, nil
}
