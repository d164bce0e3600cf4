package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/feed"
	"github.com/uniattend/attendance-backend/internal/middleware"
	ws "github.com/uniattend/attendance-backend/internal/websocket"
)

const keepAliveInterval = 30 * time.Second

type feedSubscriber interface {
	Subscribe(ctx context.Context, classCode string) (feed.Subscription, error)
}

type feedAuthorizer interface {
	AuthorizeFeed(ctx context.Context, professor, code string) error
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler streams a class's admissions to its professor over WebSocket.
type FeedHandler struct {
	feed     feedSubscriber
	authz    feedAuthorizer
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(f feedSubscriber, authz feedAuthorizer, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		feed:     f,
		authz:    authz,
		log:      log.With().Str("component", "feed_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/classes/:code/attendance/stream?token=...
// Upgrades to WebSocket and forwards every admission for the class until
// the client disconnects.
func (h *FeedHandler) Stream(c *gin.Context) {
	code, ok := param(c, "code", "classcode")
	if !ok {
		return
	}
	professor := middleware.GetClaims(c).Subject

	// Ownership and subscription are settled before the upgrade so failures
	// are plain HTTP errors.
	if err := h.authz.AuthorizeFeed(c.Request.Context(), professor, code); err != nil {
		fail(c, h.log, err)
		return
	}
	sub, err := h.feed.Subscribe(c.Request.Context(), code)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("code", code).Str("professor", professor).Logger()
	wsLog.Info().Msg("Professor attached to live attendance feed")

	if err := ws.WriteTyped(conn, ws.SubscribedResponse{Event: ws.EventSubscribed, Code: code}); err != nil {
		return
	}

	// gorilla allows one concurrent writer: the reader hands replies to this loop.
	replies := make(chan interface{}, 4)
	done := make(chan struct{})
	go h.readLoop(conn, wsLog, replies, done)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-done:
			wsLog.Info().Msg("Professor detached from live attendance feed")
			return

		case payload, ok := <-sub.Messages():
			if !ok {
				ws.WriteError(conn, "feed closed")
				return
			}
			msg := ws.AttendanceMessage{Event: ws.EventAttendanceMarked, Data: payload}
			if err := ws.WriteTyped(conn, msg); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}

		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}

		case <-keepAlive.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// readLoop handles client actions until the connection fails, then closes done.
func (h *FeedHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, replies chan<- interface{}, done chan<- struct{}) {
	defer close(done)
	ws.KeepReadDeadline(conn)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}

		select {
		case replies <- reply:
		default:
		}
	}
}
