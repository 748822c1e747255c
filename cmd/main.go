package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voice_relay/internal/delivery"
	"github.com/Vovarama1992/voice_relay/internal/error_notificator"
	"github.com/Vovarama1992/voice_relay/internal/speech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV
	// =========================================================================

	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	maxUploadBytes := envInt64("MAX_UPLOAD_BYTES", delivery.DefaultMaxUploadBytes)
	chunkSize := int(envInt64("RELAY_CHUNK_SIZE", delivery.DefaultChunkSize))
	ratePerMinute := int(envInt64("RATE_LIMIT_PER_MINUTE", 0))

	speechCfg, err := speech.LoadConfig()
	if err != nil {
		log.Fatalf("invalid elevenlabs config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// ключи не обязательны для старта: без них каждый запрос получит 500
	if err := speechCfg.Configured(); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "warn",
			Message: "XI_API_KEY or VOICE_ID is not set, /process_audio will fail",
			Service: "voice_relay",
		})
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	chatID := envInt64("TELEGRAM_NOTIFY_CHAT_ID", 0)
	errInfra, err := error_notificator.NewTelegramInfra(os.Getenv("TELEGRAM_NOTIFY_TOKEN"), chatID)
	if err != nil {
		log.Fatalf("failed to init telegram notificator: %v", err)
	}
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// SERVICES
	// =========================================================================

	ttsClient := speech.NewElevenLabsClient(speechCfg)
	speechService := speech.NewService(speechCfg, ttsClient)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	pageHandler := delivery.NewPageHandler(zl)
	relayHandler := delivery.NewRelayHandler(speechService, errService, zl, maxUploadBytes, chunkSize)

	delivery.RegisterRoutes(r, pageHandler, relayHandler, ratePerMinute)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "voice_relay",
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

func allowedOrigins() []string {
	v := os.Getenv("CORS_ALLOWED_ORIGINS")
	if v == "" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
