package interview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/talentscout/internal/domain"
)

const wsWriteTimeout = 5 * time.Second

// chatMessage is a structured client frame. Frames that are not JSON
// objects with a type are treated as candidate text.
type chatMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// chatEvent is a server frame.
type chatEvent struct {
	Type    string       `json:"type"`
	Session *SessionView `json:"session,omitempty"`
	Turn    *TurnView    `json:"turn,omitempty"`
	Error   string       `json:"error,omitempty"`
	Reply   string       `json:"reply,omitempty"`
}

// HandleChatSocket handles GET /ws/chat. Without a session_id query
// parameter a new session is started.
func (h *Handler) HandleChatSocket(w http.ResponseWriter, r *http.Request) {
	ctx := WithChannel(r.Context(), ChannelWebSocket)
	sessionID := r.URL.Query().Get("session_id")

	var (
		sess *domain.Session
		err  error
	)
	if sessionID == "" {
		sess, err = h.svc.Start(ctx)
	} else {
		sess, err = h.svc.Get(ctx, sessionID)
	}
	if err != nil {
		h.writeError(w, sessionID, err)
		return
	}
	sessionID = sess.ID

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.cfg.AllowedOrigins),
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()
	ws.SetReadLimit(h.cfg.MaxRequestBodySize)

	h.conns.Register(sessionID, ws)
	defer h.conns.Unregister(sessionID, ws)

	slog.Info("Chat socket connected", "session_id", sessionID, "ip", r.RemoteAddr)

	view := h.svc.NewSessionView(sess)
	if err := writeEvent(ctx, ws, chatEvent{Type: "session", Session: &view}); err != nil {
		slog.Debug("Failed to send session snapshot", "error", err, "session_id", sessionID)
		return
	}

	h.readLoop(ctx, ws, sessionID)
	slog.Info("Chat socket closed", "session_id", sessionID)
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, sessionID string) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else if !errors.Is(err, context.Canceled) {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}
		if typ != websocket.MessageText {
			if err := writeEvent(ctx, ws, chatEvent{Type: "error", Error: "text frames only"}); err != nil {
				return
			}
			continue
		}

		msg := parseChatMessage(data)
		var event chatEvent
		switch msg.Type {
		case "ping":
			event = chatEvent{Type: "pong"}
		case "restart":
			event = h.restartEvent(ctx, sessionID)
		case "turn":
			event = h.turnEvent(ctx, sessionID, msg.Text)
		default:
			event = chatEvent{Type: "error", Error: "unknown message type"}
		}

		if err := writeEvent(ctx, ws, event); err != nil {
			slog.Debug("Failed to write chat event", "error", err, "session_id", sessionID)
			return
		}
	}
}

func (h *Handler) turnEvent(ctx context.Context, sessionID, text string) chatEvent {
	if !h.rateLimiter.Allow(sessionID) {
		return chatEvent{Type: "error", Error: "rate limit exceeded"}
	}
	_, res, err := h.svc.Submit(ctx, sessionID, text)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("Chat turn failed", "session_id", sessionID, "error", err)
		}
		return chatEvent{Type: "error", Error: msg, Reply: res.Reply}
	}
	view := NewTurnView(sessionID, res)
	return chatEvent{Type: "turn", Turn: &view}
}

func (h *Handler) restartEvent(ctx context.Context, sessionID string) chatEvent {
	sess, err := h.svc.Restart(ctx, sessionID)
	if err != nil {
		_, msg := statusFor(err)
		return chatEvent{Type: "error", Error: msg}
	}
	view := h.svc.NewSessionView(sess)
	return chatEvent{Type: "session", Session: &view}
}

func parseChatMessage(data []byte) chatMessage {
	var msg chatMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Type != "" {
		return msg
	}
	return chatMessage{Type: "turn", Text: string(data)}
}

func writeEvent(ctx context.Context, ws *websocket.Conn, event chatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}

// originPatterns converts configured CORS origins to the host patterns the
// WebSocket library matches against.
func originPatterns(allowed []string) []string {
	patterns := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
