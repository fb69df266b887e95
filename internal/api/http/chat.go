package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-chat/internal/chat"
)

const (
	defaultTurnTimeout = 45 * time.Second
	streamBuffer       = 16
)

// chatRequest is one user message, optionally continuing a session.
type chatRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
	Message   string `json:"message" validate:"required,max=500"`
}

func (r *chatRequest) normalize() error {
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.Message = strings.TrimSpace(r.Message)
	return validate.Struct(r)
}

type chatResponse struct {
	SessionID string        `json:"session_id"`
	Turn      uint64        `json:"turn"`
	Actions   []chat.Action `json:"actions"`
	// Superseded is set when a newer turn started before this one finished;
	// renders after that point were dropped.
	Superseded bool `json:"superseded"`
}

func registerChatRoutes(v1 fiber.Router, conv Conversation) {
	if conv.Router == nil || conv.Sessions == nil {
		return
	}
	timeout := conv.TurnTimeout
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}

	v1.Post("/chat", func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := req.normalize(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		sess, turn := conv.Sessions.Begin(req.SessionID)
		rec := chat.NewRecorder()

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		conv.Router.Route(ctx, req.Message, sess.Guard(turn, rec))

		actions := rec.Actions()
		if actions == nil {
			actions = []chat.Action{}
		}
		return c.JSON(chatResponse{
			SessionID:  sess.ID,
			Turn:       turn,
			Actions:    actions,
			Superseded: !sess.Current(turn),
		})
	})

	// Server-sent events: one "action" event per render as it happens.
	v1.Get("/chat/stream", func(c *fiber.Ctx) error {
		req := chatRequest{
			SessionID: c.Query("session_id"),
			Message:   c.Query("message"),
		}
		if err := req.normalize(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		sess, turn := conv.Sessions.Begin(req.SessionID)

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			events := make(chan chat.Action, streamBuffer)
			emit := chat.EmitFunc(func(a chat.Action) {
				select {
				case events <- a:
				default:
					slog.Warn("chat stream buffer full, dropping action", "session", sess.ID, "kind", a.Kind)
				}
			})
			go func() {
				defer close(events)
				conv.Router.Route(ctx, req.Message, sess.Guard(turn, emit))
			}()

			alive := writeEvent(w, "session", fiber.Map{"session_id": sess.ID, "turn": turn})
			for a := range events {
				if !alive {
					continue
				}
				if alive = writeEvent(w, "action", a); !alive {
					// Client went away; stop the turn and drain.
					cancel()
				}
			}
			if alive {
				writeEvent(w, "done", fiber.Map{"superseded": !sess.Current(turn)})
			}
		})
		return nil
	})
}

// writeEvent writes one SSE frame and flushes it. It reports whether the
// client is still reachable.
func writeEvent(w *bufio.Writer, event string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("chat stream encode failed", "event", event, "err", err)
		return true
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return false
	}
	return w.Flush() == nil
}
