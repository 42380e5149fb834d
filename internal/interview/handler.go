package interview

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/talentscout/internal/api"
	"github.com/ashureev/talentscout/internal/engine"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20 // 1MB

// HandlerConfig tunes the HTTP surface.
type HandlerConfig struct {
	MaxRequestBodySize int64
	AllowedOrigins     []string
}

// Handler serves the session API and the chat socket.
type Handler struct {
	svc         *Service
	rateLimiter *RateLimiter
	conns       *ConnRegistry
	cfg         HandlerConfig
}

// NewHandler creates a handler. A nil limiter disables rate limiting and a
// nil registry gets a fresh one.
func NewHandler(svc *Service, limiter *RateLimiter, conns *ConnRegistry, cfg HandlerConfig) *Handler {
	if limiter == nil {
		limiter = &RateLimiter{requests: make(map[string][]time.Time), done: make(chan struct{})}
	}
	if conns == nil {
		conns = NewConnRegistry()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Handler{svc: svc, rateLimiter: limiter, conns: conns, cfg: cfg}
}

// RegisterRoutes registers the session API and the chat socket.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Post("/turns", h.HandleTurn)
			r.Post("/restart", h.HandleRestart)
		})
	})
	r.Get("/ws/chat", h.HandleChatSocket)
}

// turnRequest is the body of POST /api/sessions/{id}/turns.
type turnRequest struct {
	Text string `json:"text"`
}

// HandleCreate handles POST /api/sessions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Start(r.Context())
	if err != nil {
		slog.Error("Failed to start session", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	api.JSON(w, http.StatusCreated, h.svc.NewSessionView(sess))
}

// HandleGet handles GET /api/sessions/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.svc.Get(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, sessionID, err)
		return
	}
	api.JSON(w, http.StatusOK, h.svc.NewSessionView(sess))
}

// HandleTurn handles POST /api/sessions/{id}/turns.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if !h.rateLimiter.Allow(sessionID) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxRequestBodySize)

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, res, err := h.svc.Submit(WithChannel(r.Context(), ChannelHTTP), sessionID, req.Text)
	switch {
	case errors.Is(err, engine.ErrSessionFinished):
		api.JSON(w, http.StatusConflict, map[string]string{
			"error": err.Error(),
			"reply": res.Reply,
		})
		return
	case err != nil:
		h.writeError(w, sessionID, err)
		return
	}

	api.JSON(w, http.StatusOK, NewTurnView(sessionID, res))
}

// HandleRestart handles POST /api/sessions/{id}/restart.
func (h *Handler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.svc.Restart(WithChannel(r.Context(), ChannelHTTP), sessionID)
	if err != nil {
		h.writeError(w, sessionID, err)
		return
	}
	api.JSON(w, http.StatusOK, h.svc.NewSessionView(sess))
}

// HandleDelete handles DELETE /api/sessions/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if closed := h.conns.CloseSession(sessionID); closed > 0 {
		slog.Info("Closed chat sockets of deleted session", "session_id", sessionID, "count", closed)
	}
	h.rateLimiter.Forget(sessionID)

	if err := h.svc.Delete(r.Context(), sessionID); err != nil {
		h.writeError(w, sessionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, engine.ErrEmptyInput):
		return http.StatusBadRequest, "text is required"
	case errors.Is(err, engine.ErrNotFinished):
		return http.StatusConflict, "session is not finished"
	case errors.Is(err, engine.ErrSessionFinished):
		return http.StatusConflict, "session is finished"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, sessionID string, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Session request failed", "session_id", sessionID, "error", err)
	}
	api.Error(w, status, msg)
}
