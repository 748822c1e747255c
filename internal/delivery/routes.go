package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

const processAudioPath = "/process_audio"

// RegisterRoutes; ratePerMinute <= 0 отключает лимит на /process_audio.
func RegisterRoutes(
	r chi.Router,
	hPage *PageHandler,
	hRelay *RelayHandler,
	ratePerMinute int,
) {
	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		pr.Get("/", hPage.Index)

		relay := pr.With()
		if ratePerMinute > 0 {
			relay = pr.With(httprate.LimitByIP(ratePerMinute, time.Minute))
		}
		relay.Post(processAudioPath, hRelay.ProcessAudio)
	})
}
