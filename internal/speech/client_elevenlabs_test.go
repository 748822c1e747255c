package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:          "key-1",
		VoiceID:         "voice-1",
		ModelID:         DefaultModelID,
		Stability:       0.4,
		SimilarityBoost: 0.9,
		BaseURL:         baseURL,
	}
}

func TestConvert_SendsMultipartForm(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/speech-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("xi-api-key"))
		assert.Empty(t, r.Header.Get("Accept"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, DefaultModelID, r.FormValue("model_id"))

		var vs voiceSettings
		assert.NoError(t, json.Unmarshal([]byte(r.FormValue("voice_settings")), &vs))
		assert.Equal(t, 0.4, vs.Stability)
		assert.Equal(t, 0.9, vs.SimilarityBoost)

		f, hdr, err := r.FormFile("audio")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "clip.webm", hdr.Filename)
		assert.Equal(t, "audio/webm", hdr.Header.Get("Content-Type"))
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("raw-audio"), data)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte{0x01, 0x02, 0x03})
	}))
	defer upstream.Close()

	c := NewElevenLabsClient(testConfig(upstream.URL))
	body, err := c.Convert(context.Background(), Clip{Filename: "clip.webm", Data: []byte("raw-audio")})
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
}

func TestConvert_StreamingVariant(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech-to-speech/voice-1/stream", r.URL.Path)
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.Streaming = true

	body, err := NewElevenLabsClient(cfg).Convert(context.Background(), Clip{Filename: "a.webm", Data: []byte("x")})
	require.NoError(t, err)
	body.Close()
}

func TestConvert_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("oops"))
	}))
	defer upstream.Close()

	_, err := NewElevenLabsClient(testConfig(upstream.URL)).Convert(context.Background(), Clip{Filename: "a.webm"})
	require.Error(t, err)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
	assert.Equal(t, "text/plain", upErr.ContentType)
	assert.Equal(t, "oops", string(upErr.Body))
}

func TestConvert_TransportError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	_, err := NewElevenLabsClient(testConfig(url)).Convert(context.Background(), Clip{Filename: "a.webm"})
	require.Error(t, err)

	var upErr *UpstreamError
	assert.NotErrorAs(t, err, &upErr)
}

type stubConverter struct {
	calls int
}

func (s *stubConverter) Convert(context.Context, Clip) (io.ReadCloser, error) {
	s.calls++
	return io.NopCloser(nil), nil
}

func TestService_NotConfigured(t *testing.T) {
	conv := &stubConverter{}
	svc := NewService(Config{VoiceID: "voice-1"}, conv)

	assert.ErrorIs(t, svc.Configured(), ErrNotConfigured)

	_, err := svc.Convert(context.Background(), Clip{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, conv.calls)
}
