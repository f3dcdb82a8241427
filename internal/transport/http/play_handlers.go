package http

import (
	"net/http"

	"quizhunt-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

type answerRequest struct {
	Answer *string `json:"answer"`
}

func (h *Handler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.play.CurrentQuestion(r.Context(), principal(r), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Answer == nil {
		h.writeError(w, r, domain.Invalid("answer is required"))
		return
	}
	result, err := h.play.SubmitAnswer(r.Context(), principal(r), chi.URLParam(r, "eventID"), *req.Answer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.play.Leaderboard(r.Context(), principal(r), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) listScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.play.ListScores(r.Context(), principal(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (h *Handler) getScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.play.GetScore(r.Context(), principal(r), chi.URLParam(r, "scoreID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}
