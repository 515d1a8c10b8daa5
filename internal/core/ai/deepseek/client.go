package deepseek

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"recipema/internal/infrastructure/config"
	"recipema/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// 提供者錯誤的分類。呼叫端用 errors.Is 做決策，不比對錯誤字串。
var (
	ErrTimeout       = errors.New("deepseek: request timed out")
	ErrRateLimited   = errors.New("deepseek: rate limited by provider")
	ErrQuotaExceeded = errors.New("deepseek: quota exceeded")
	ErrBadStatus     = errors.New("deepseek: non-2xx response")
	ErrEmptyResponse = errors.New("deepseek: empty response")
)

// Message 對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest DeepSeek chat-completion 請求
type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

// chatResponse DeepSeek chat-completion 響應
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Client DeepSeek 客戶端
type Client struct {
	config *config.DeepSeekConfig
	client *resty.Client
}

// NewClient 創建 DeepSeek 客戶端
func NewClient(cfg *config.DeepSeekConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		config: cfg,
		client: client,
	}
}

// Complete 發送一次 chat-completion 請求並回傳第一個 choice 的內容。
// 單次嘗試，不重試；超時由 config 的 timeout 控制。
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: c.config.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    c.config.Temperature,
		MaxTokens:      c.config.MaxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&chatResponse{}).
		Post("/chat/completions")

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("failed to send request to DeepSeek: %w", err)
	}

	if err := classifyStatus(resp.StatusCode()); err != nil {
		common.LogError("DeepSeek 回傳錯誤狀態",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return "", err
	}

	result, ok := resp.Result().(*chatResponse)
	if !ok || result == nil || len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return "", ErrEmptyResponse
	}

	common.LogDebug("DeepSeek 請求完成",
		zap.Int("total_tokens", result.Usage.TotalTokens),
		zap.Int("content_length", len(content)),
	)

	return content, nil
}

// classifyStatus 依 HTTP 狀態碼歸類提供者錯誤。
// 決策表：429 → 限流、402/403 → 配額、其餘非 2xx → ErrBadStatus。
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", ErrRateLimited, status)
	case status == http.StatusPaymentRequired || status == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrQuotaExceeded, status)
	default:
		return fmt.Errorf("%w (status %d)", ErrBadStatus, status)
	}
}
