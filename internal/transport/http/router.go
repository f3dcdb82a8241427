package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires every endpoint. An empty origins list allows any origin.
func NewRouter(h *Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authenticate)

		r.Route("/manage", func(r chi.Router) {
			r.Get("/events", h.listOwnedEvents)
			r.Post("/events", h.createEvent)
			r.Get("/events/{eventID}", h.getOwnedEvent)
			r.Put("/events/{eventID}", h.updateEvent)
			r.Delete("/events/{eventID}", h.deleteEvent)

			r.Get("/events/{eventID}/questions", h.listQuestions)
			r.Post("/events/{eventID}/questions", h.createQuestion)
			r.Get("/questions/{questionID}", h.getQuestion)
			r.Put("/questions/{questionID}", h.updateQuestion)
			r.Delete("/questions/{questionID}", h.deleteQuestion)

			r.Get("/events/{eventID}/rules", h.listRules)
			r.Post("/events/{eventID}/rules", h.createRule)
			r.Get("/rules/{ruleID}", h.getRule)
			r.Put("/rules/{ruleID}", h.updateRule)
			r.Delete("/rules/{ruleID}", h.deleteRule)
		})

		r.Get("/events", h.listEvents)
		r.Get("/events/past", h.eventsInWindow("past"))
		r.Get("/events/present", h.eventsInWindow("present"))
		r.Get("/events/future", h.eventsInWindow("future"))
		r.Get("/events/{eventID}", h.eventDetail)
		r.Get("/events/{eventID}/play", h.currentQuestion)
		r.Post("/events/{eventID}/play", h.submitAnswer)
		r.Get("/events/{eventID}/leaderboard", h.leaderboard)
		r.Get("/events/{eventID}/leaderboard/live", h.ServeLeaderboardWS)

		r.Get("/scores", h.listScores)
		r.Get("/scores/{scoreID}", h.getScore)
	})

	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.LogAttrs(r.Context(), slog.LevelInfo, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
