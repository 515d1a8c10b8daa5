package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	imagesvc "recipema/internal/core/image"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine 回傳固定文字或錯誤
type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Recognize(ctx context.Context, img []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestRouter(engine *fakeEngine, maxImageBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(engine, imagesvc.NewService(maxImageBytes))
	r.POST("/ocr", h.HandleRecognize)
	return r
}

// pngBytes 產生一張小的 PNG 測試圖
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartImage 組出帶 Content-Type 的 multipart 上傳
func multipartImage(t *testing.T, fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func TestHandleRecognize(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		engine := &fakeEngine{text: "2 cups tomatoes\nFresh basil leaves\nsalt"}
		r := newTestRouter(engine, 10<<20)

		body, contentType := multipartImage(t, "image", "receipt.png", "image/png", pngBytes(t))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ocr", body)
		req.Header.Set("Content-Type", contentType)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, engine.text, resp.RawText)
		assert.Contains(t, resp.ExtractedIngredients, "Tomato")
		assert.Contains(t, resp.ExtractedIngredients, "Basil")
		assert.Contains(t, resp.ExtractedIngredients, "Salt")
		assert.Greater(t, resp.Confidence, 0.0)
		assert.GreaterOrEqual(t, resp.ProcessingTime, int64(0))
	})

	t.Run("missing file is 400", func(t *testing.T) {
		r := newTestRouter(&fakeEngine{text: "x"}, 10<<20)

		body, contentType := multipartImage(t, "photo", "receipt.png", "image/png", pngBytes(t))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ocr", body)
		req.Header.Set("Content-Type", contentType)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No image file provided")
	})

	t.Run("non-image content type is 400", func(t *testing.T) {
		r := newTestRouter(&fakeEngine{text: "x"}, 10<<20)

		body, contentType := multipartImage(t, "image", "notes.txt", "text/plain", []byte("not an image"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ocr", body)
		req.Header.Set("Content-Type", contentType)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Only image files are allowed")
	})

	t.Run("undecodable image is 400", func(t *testing.T) {
		r := newTestRouter(&fakeEngine{text: "x"}, 10<<20)

		body, contentType := multipartImage(t, "image", "fake.png", "image/png", []byte("garbage bytes"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ocr", body)
		req.Header.Set("Content-Type", contentType)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid image")
	})

	t.Run("oversized image is 413", func(t *testing.T) {
		r := newTestRouter(&fakeEngine{text: "x"}, 16) // 上限 16 bytes

		body, contentType := multipartImage(t, "image", "big.png", "image/png", pngBytes(t))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ocr", body)
		req.Header.Set("Content-Type", contentType)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("engine failure is 502", func(t *testing.T) {
		engine := &fakeEngine{err: errors.New("connection refused")}
		r := newTestRouter(engine, 10<<20)

		body, contentType := multipartImage(t, "image", "receipt.png", "image/png", pngBytes(t))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ocr", body)
		req.Header.Set("Content-Type", contentType)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "OCR processing failed")
	})
}
