package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(r chi.Router, h *MissionHandler, requestsPerMinute int) {
	r.Route("/", func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)
		if requestsPerMinute > 0 {
			pr.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))
		}

		// --- миссии ---
		pr.Get("/mission", h.Next)
		pr.Get("/mission/{id}", h.ByID)
		pr.Get("/mission/title/{title}", h.ByTitle)
		pr.Get("/mission-audio/{id}", h.Audio)

		// --- служебное ---
		pr.Get("/buffer", h.Buffer)
		pr.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("pong"))
		})
	})
}
