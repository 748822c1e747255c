package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/rs/xid"

	"github.com/Vovarama1992/voice_relay/internal/speech"
)

const (
	serviceName = "voice_relay"

	audioField = "audio"

	DefaultMaxUploadBytes int64 = 32 << 20
	DefaultChunkSize            = 1024

	msgNotConfigured  = "Missing API Key or Voice ID on Server"
	msgNoAudio        = "No audio uploaded"
	msgUploadTooLarge = "Audio upload too large"
	msgPaymentNeeded  = "ElevenLabs quota exhausted or payment required: check the account subscription and character balance"

	notifyTimeout = 10 * time.Second
)

type SpeechService interface {
	Configured() error
	Convert(ctx context.Context, clip speech.Clip) (io.ReadCloser, error)
}

type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}

type RelayHandler struct {
	speech         SpeechService
	notify         Notifier
	log            *logger.ZapLogger
	maxUploadBytes int64
	chunkSize      int
}

func NewRelayHandler(speechSvc SpeechService, notify Notifier, log *logger.ZapLogger, maxUploadBytes int64, chunkSize int) *RelayHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &RelayHandler{
		speech:         speechSvc,
		notify:         notify,
		log:            log,
		maxUploadBytes: maxUploadBytes,
		chunkSize:      chunkSize,
	}
}

// ProcessAudio — POST /process_audio: голос из формы → ElevenLabs → mp3 потоком обратно.
func (h *RelayHandler) ProcessAudio(w http.ResponseWriter, r *http.Request) {
	relayID := xid.New().String()

	// конфиг проверяем до чтения тела
	if err := h.speech.Configured(); err != nil {
		h.logf("error", err, "[%s] speech not configured", relayID)
		writeJSONError(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	clip, status, err := h.readClip(w, r)
	if err != nil {
		h.logf("warn", err, "[%s] bad upload", relayID)
		writeJSONError(w, status, clipErrorMessage(status))
		return
	}

	h.logf("info", nil, "[%s] relaying %q (%s)", relayID, clip.Filename, humanize.Bytes(uint64(len(clip.Data))))

	body, err := h.speech.Convert(r.Context(), clip)
	if err != nil {
		h.writeConvertError(w, r, relayID, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)

	n, err := streamChunks(w, body, h.chunkSize)
	if err != nil {
		// заголовки уже ушли, статус не поменять
		h.logf("error", err, "[%s] stream interrupted after %s", relayID, humanize.Bytes(uint64(n)))
		return
	}

	h.logf("info", nil, "[%s] streamed %s", relayID, humanize.Bytes(uint64(n)))
}

func (h *RelayHandler) readClip(w http.ResponseWriter, r *http.Request) (speech.Clip, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return speech.Clip{}, http.StatusRequestEntityTooLarge, err
		}
		return speech.Clip{}, http.StatusBadRequest, err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(audioField)
	if err != nil {
		return speech.Clip{}, http.StatusBadRequest, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return speech.Clip{}, http.StatusBadRequest, fmt.Errorf("read audio: %w", err)
	}

	return speech.Clip{Filename: header.Filename, Data: data}, 0, nil
}

func clipErrorMessage(status int) string {
	if status == http.StatusRequestEntityTooLarge {
		return msgUploadTooLarge
	}
	return msgNoAudio
}

func (h *RelayHandler) writeConvertError(w http.ResponseWriter, r *http.Request, relayID string, err error) {
	var upErr *speech.UpstreamError

	switch {
	case errors.Is(err, speech.ErrNotConfigured):
		h.logf("error", err, "[%s] speech not configured", relayID)
		writeJSONError(w, http.StatusInternalServerError, msgNotConfigured)

	case errors.As(err, &upErr) && upErr.StatusCode == http.StatusPaymentRequired:
		h.logf("error", err, "[%s] elevenlabs payment required", relayID)
		h.notifyAsync(err, fmt.Sprintf("relay %s: upstream status %d", relayID, upErr.StatusCode))
		writeJSONError(w, http.StatusPaymentRequired, msgPaymentNeeded)

	case upErr != nil:
		// статус и тело апстрима отдаём как есть
		h.logf("warn", err, "[%s] elevenlabs rejected request", relayID)
		if upErr.ContentType != "" {
			w.Header().Set("Content-Type", upErr.ContentType)
		}
		w.WriteHeader(upErr.StatusCode)
		_, _ = w.Write(upErr.Body)

	default:
		h.logf("error", err, "[%s] elevenlabs transport failure", relayID)
		if r.Context().Err() == nil {
			h.notifyAsync(err, fmt.Sprintf("relay %s: transport failure", relayID))
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *RelayHandler) notifyAsync(err error, details string) {
	if h.notify == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if nErr := h.notify.Notify(ctx, err, details); nErr != nil {
			h.logf("warn", nErr, "notification failed")
		}
	}()
}

func (h *RelayHandler) logf(level string, err error, format string, args ...any) {
	h.log.Log(logger.LogEntry{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Service: serviceName,
		Error:   err,
	})
}

// streamChunks пишет src в w кусками по size байт, сбрасывая каждый кусок клиенту.
func streamChunks(w http.ResponseWriter, src io.Reader, size int) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, size)

	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return written, err
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return written, err
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
