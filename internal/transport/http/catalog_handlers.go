package http

import (
	"net/http"
	"time"

	"quizhunt-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

func (req eventRequest) toDomain() domain.Event {
	return domain.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
}

type questionRequest struct {
	Level          int    `json:"level"`
	Prompt         string `json:"prompt"`
	Answer         string `json:"answer"`
	CorrectScore   int    `json:"correctScore"`
	IncorrectScore int    `json:"incorrectScore"`
}

func (req questionRequest) toDomain() domain.Question {
	return domain.Question{
		Level:          req.Level,
		Prompt:         req.Prompt,
		Answer:         req.Answer,
		CorrectScore:   req.CorrectScore,
		IncorrectScore: req.IncorrectScore,
	}
}

type ruleRequest struct {
	Content string `json:"content"`
}

func (h *Handler) listOwnedEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListOwnedEvents(r.Context(), principal(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	event, err := h.catalog.CreateEvent(r.Context(), principal(r), req.toDomain())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) getOwnedEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.catalog.GetOwnedEvent(r.Context(), principal(r), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	event, err := h.catalog.UpdateEvent(r.Context(), principal(r), chi.URLParam(r, "eventID"), req.toDomain())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteEvent(r.Context(), principal(r), chi.URLParam(r, "eventID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.ListQuestions(r.Context(), principal(r), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.catalog.CreateQuestion(r.Context(), principal(r), chi.URLParam(r, "eventID"), req.toDomain())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.catalog.GetQuestion(r.Context(), principal(r), chi.URLParam(r, "questionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.catalog.UpdateQuestion(r.Context(), principal(r), chi.URLParam(r, "questionID"), req.toDomain())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteQuestion(r.Context(), principal(r), chi.URLParam(r, "questionID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.catalog.ListRules(r.Context(), principal(r), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rule, err := h.catalog.CreateRule(r.Context(), principal(r), chi.URLParam(r, "eventID"), domain.Rule{Content: req.Content})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (h *Handler) getRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.catalog.GetRule(r.Context(), principal(r), chi.URLParam(r, "ruleID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rule, err := h.catalog.UpdateRule(r.Context(), principal(r), chi.URLParam(r, "ruleID"), domain.Rule{Content: req.Content})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteRule(r.Context(), principal(r), chi.URLParam(r, "ruleID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListEvents(r.Context(), principal(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) eventsInWindow(raw string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := domain.ParseWindow(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		events, err := h.catalog.EventsInWindow(r.Context(), principal(r), window)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (h *Handler) eventDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.EventDetail(r.Context(), principal(r), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
