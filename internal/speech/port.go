package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrNotConfigured = errors.New("missing api key or voice id")

// Clip — загруженный клиентом аудиофрагмент.
type Clip struct {
	Filename string
	Data     []byte
}

// UpstreamError — ответ ElevenLabs со статусом, отличным от 200.
type UpstreamError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("elevenlabs error (status %d): %s", e.StatusCode, string(e.Body))
}

type Converter interface {
	Convert(ctx context.Context, clip Clip) (io.ReadCloser, error) // голос → голос (поток mp3)
}
