package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/goccy/go-json"
)

const clipContentType = "audio/webm"

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ElevenLabsClient struct {
	cfg     Config
	httpCli *http.Client
}

func NewElevenLabsClient(cfg Config) *ElevenLabsClient {
	return &ElevenLabsClient{
		cfg:     cfg,
		httpCli: &http.Client{Timeout: cfg.Timeout},
	}
}

// SPEECH → SPEECH
// Тело успешного ответа не читается: вызывающий стримит его и закрывает сам.
func (c *ElevenLabsClient) Convert(ctx context.Context, clip Clip) (io.ReadCloser, error) {
	body, contentType, err := c.buildForm(clip)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)
	if c.cfg.Streaming {
		req.Header.Set("Accept", "audio/mpeg")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read elevenlabs error body: %w", readErr)
		}
		return nil, &UpstreamError{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        b,
		}
	}

	return resp.Body, nil
}

func (c *ElevenLabsClient) url() string {
	url := fmt.Sprintf("%s/v1/speech-to-speech/%s", c.cfg.BaseURL, c.cfg.VoiceID)
	if c.cfg.Streaming {
		url += "/stream"
	}
	return url
}

func (c *ElevenLabsClient) buildForm(clip Clip) (*bytes.Buffer, string, error) {
	settings, err := json.Marshal(voiceSettings{
		Stability:       c.cfg.Stability,
		SimilarityBoost: c.cfg.SimilarityBoost,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal voice settings: %w", err)
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, clip.Filename))
	h.Set("Content-Type", clipContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, "", err
	}

	if err := mw.WriteField("model_id", c.cfg.ModelID); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("voice_settings", string(settings)); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf, mw.FormDataContentType(), nil
}
