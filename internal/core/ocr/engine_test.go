package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipema/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteEngine(t *testing.T) {
	t.Run("posts base64 image and returns text", func(t *testing.T) {
		var received recognizeRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/recognize", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"text":"2 cups tomatoes"}`))
		}))
		defer server.Close()

		engine := NewRemoteEngine(&config.OCRConfig{
			EngineURL: server.URL,
			Language:  "eng",
			Timeout:   5 * time.Second,
		})

		text, err := engine.Recognize(context.Background(), []byte("image-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "2 cups tomatoes", text)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("image-bytes")), received.Image)
		assert.Equal(t, "eng", received.Language)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		engine := NewRemoteEngine(&config.OCRConfig{
			EngineURL: server.URL,
			Timeout:   5 * time.Second,
		})

		_, err := engine.Recognize(context.Background(), []byte("x"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("unreachable engine is an error", func(t *testing.T) {
		engine := NewRemoteEngine(&config.OCRConfig{
			EngineURL: "http://127.0.0.1:1",
			Timeout:   time.Second,
		})

		_, err := engine.Recognize(context.Background(), []byte("x"))
		assert.Error(t, err)
	})
}
