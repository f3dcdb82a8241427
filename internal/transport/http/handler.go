package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quizhunt-service/internal/app"
	"quizhunt-service/internal/auth"
	"quizhunt-service/internal/domain"

	"github.com/gorilla/websocket"
)

// Handler holds the use cases and the pieces every endpoint needs.
type Handler struct {
	catalog  *app.CatalogService
	play     *app.PlayService
	tokens   *auth.Tokens
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(catalog *app.CatalogService, play *app.PlayService, tokens *auth.Tokens, logger *slog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		play:    play,
		tokens:  tokens,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorPayload{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateLevel):
		return http.StatusConflict
	case domain.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("malformed JSON body")
	}
	return nil
}

// authenticate resolves a bearer token from the Authorization header, or from the token
// query parameter for websocket clients, into the request principal. Requests without a
// token pass through unauthenticated; the use cases reject them where needed.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ""
		if hdr := r.Header.Get("Authorization"); strings.HasPrefix(hdr, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(hdr, "Bearer "))
		} else if q := r.URL.Query().Get("token"); q != "" {
			raw = q
		}
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		p, err := h.tokens.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Error: "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

func principal(r *http.Request) domain.Principal {
	return auth.PrincipalFrom(r.Context())
}
