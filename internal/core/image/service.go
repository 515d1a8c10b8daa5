package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"golang.org/x/image/draw"

	_ "golang.org/x/image/webp" // 支援 WebP
)

// maxDimension OCR 前處理的長邊上限，超過就等比縮小
const maxDimension = 1200

// Service 圖片前處理服務。驗證上傳內容並整理成適合 OCR 引擎的輸入。
type Service struct {
	maxSizeBytes int64
}

// NewService 創建圖片前處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
	}
}

// Normalize 解碼並重新編碼上傳的圖片。
// 無法解碼、格式不支援或超過大小上限都回傳錯誤；超過長邊上限時等比縮小。
func (s *Service) Normalize(data []byte) ([]byte, error) {
	if int64(len(data)) > s.maxSizeBytes {
		return nil, fmt.Errorf("image size %d exceeds maximum limit of %d bytes", len(data), s.maxSizeBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if !isSupportedFormat(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	img = scaleDown(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// scaleDown 長邊超過上限時等比縮小，否則原樣回傳
func scaleDown(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDimension && h <= maxDimension {
		return img
	}

	scale := float64(maxDimension) / float64(w)
	if h > w {
		scale = float64(maxDimension) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}
