package speech

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL         = "https://api.elevenlabs.io"
	DefaultModelID         = "eleven_multilingual_v2"
	DefaultStability       = 0.5
	DefaultSimilarityBoost = 0.8
)

// Config — настройки ElevenLabs speech-to-speech.
// APIKey и VoiceID могут быть пустыми: сервер стартует, но каждый запрос получит ErrNotConfigured.
type Config struct {
	APIKey          string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Streaming       bool
	BaseURL         string
	Timeout         time.Duration
}

func LoadConfig() (Config, error) {
	cfg := Config{
		APIKey:          os.Getenv("XI_API_KEY"),
		VoiceID:         os.Getenv("VOICE_ID"),
		ModelID:         os.Getenv("ELEVENLABS_MODEL_ID"),
		Stability:       DefaultStability,
		SimilarityBoost: DefaultSimilarityBoost,
		BaseURL:         strings.TrimRight(os.Getenv("ELEVENLABS_BASE_URL"), "/"),
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	var err error
	if cfg.Stability, err = unitFloat("ELEVENLABS_STABILITY", DefaultStability); err != nil {
		return Config{}, err
	}
	if cfg.SimilarityBoost, err = unitFloat("ELEVENLABS_SIMILARITY_BOOST", DefaultSimilarityBoost); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("ELEVENLABS_STREAMING"); v != "" {
		cfg.Streaming, err = strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse ELEVENLABS_STREAMING: %w", err)
		}
	}

	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		cfg.Timeout, err = time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse UPSTREAM_TIMEOUT: %w", err)
		}
	}

	return cfg, nil
}

// Configured возвращает ErrNotConfigured, если нет ключа или голоса.
func (c Config) Configured() error {
	if c.APIKey == "" || c.VoiceID == "" {
		return ErrNotConfigured
	}
	return nil
}

func unitFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%s must be within [0,1], got %v", key, f)
	}
	return f, nil
}
