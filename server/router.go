// Package server is the HTTP surface of the delegate frames.
//
// Endpoints, per served network slug:
//
//	GET|POST /frame/delegate/{network}/start
//	GET|POST /frame/delegate/{network}/delegate
//	GET|POST /frame/delegate/{network}/confirm
//	POST     /frame/delegate/{network}/tx-data
//	POST     /frame/delegate/{network}/tx-callback
//	GET      /frame/delegate/{network}/share
//	GET      /health
//	GET      /
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/send2-name/delegate2name-api/frame"
)

func NewRouter(m *frame.Machine, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(CORS)
	r.Use(func(next http.Handler) http.Handler { return WithLogging(log, next) })

	h := NewFrameHandler(m, log)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/frame/delegate/{network}", func(api chi.Router) {
		// Frame steps, reachable from a cast embed (GET) or a button (POST)
		for _, route := range []struct {
			path string
			step stepFunc
		}{
			{"/start", m.Start},
			{"/delegate", m.CheckDelegate},
			{"/confirm", m.Confirm},
		} {
			api.Get(route.path, h.Step(route.step))
			api.Post(route.path, h.Step(route.step))
		}

		// Transaction round trip
		api.Post("/tx-data", h.TransactionData)
		api.Post("/tx-callback", h.Step(m.AwaitTransaction))

		api.Get("/share", h.Step(m.Share))
	})

	// Root endpoint
	r.Get("/", h.Index)

	return r
}
