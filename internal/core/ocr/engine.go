package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"recipema/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// Engine 文字辨識引擎。影像轉文字本身委外處理，這裡只定義協作介面。
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// RemoteEngine 透過 HTTP 呼叫外部 OCR 服務
type RemoteEngine struct {
	config *config.OCRConfig
	client *resty.Client
}

// recognizeRequest 辨識請求
type recognizeRequest struct {
	Image    string `json:"image"`
	Language string `json:"language"`
}

// recognizeResponse 辨識響應
type recognizeResponse struct {
	Text string `json:"text"`
}

// NewRemoteEngine 創建遠端 OCR 引擎客戶端
func NewRemoteEngine(cfg *config.OCRConfig) *RemoteEngine {
	client := resty.New().
		SetBaseURL(cfg.EngineURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &RemoteEngine{
		config: cfg,
		client: client,
	}
}

// Recognize 將圖片送交外部引擎並回傳辨識文字
func (e *RemoteEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	req := recognizeRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		Language: e.config.Language,
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&recognizeResponse{}).
		Post("/recognize")

	if err != nil {
		return "", fmt.Errorf("failed to reach OCR engine: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OCR engine returned status %d", resp.StatusCode())
	}

	result, ok := resp.Result().(*recognizeResponse)
	if !ok || result == nil {
		return "", fmt.Errorf("unexpected OCR engine response")
	}

	return result.Text, nil
}
