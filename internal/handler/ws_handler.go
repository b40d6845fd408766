package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/service"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

type WSHandler struct {
	ctx      context.Context
	hub      *hub.Hub
	service  service.CoordinatorService
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates the socket handler. ctx bounds every connection's
// handler context; a hijacked request's own context ends with ServeHTTP.
func NewWSHandler(ctx context.Context, h *hub.Hub, svc service.CoordinatorService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		ctx:     ctx,
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsCfg.ReadBuffer,
			WriteBufferSize: wsCfg.WriteBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", func(c *gin.Context) {
		h.HandleWebSocket(c.Writer, c.Request)
	})
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.Ctx(r.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.New().String()
	// the socket outlives r.Context(); keep its logger on the server context
	ctx := log.WithFields(log.WithLogger(h.ctx, log.Ctx(r.Context())), log.FieldConnID, connID)
	logger := log.Ctx(ctx)

	client := hub.NewClient(connID, h.hub, conn, h.wsCfg)
	client.SetDisconnectHandler(func(c *hub.Client) {
		if err := h.service.HandleDisconnect(ctx, c); err != nil {
			logger.Warn().Err(err).Msg("disconnect cleanup failed")
		}
		logger.Info().Msg("connection closed")
	})

	h.hub.Register(client)
	logger.Info().Msg("connection opened")

	go client.WritePump()
	go client.ReadPump(h.messageHandler(ctx))
}

func (h *WSHandler) messageHandler(ctx context.Context) func(*hub.Client, []byte) {
	return func(client *hub.Client, message []byte) {
		h.dispatch(ctx, client, message)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, client *hub.Client, message []byte) {
	l := log.Ctx(ctx)

	inbound, err := domain.DecodeInbound(message)
	if err != nil {
		l.Debug().Err(err).Msg("rejected frame")
		text := "Invalid message format"
		if errors.Is(err, domain.ErrUnknownEvent) || errors.Is(err, domain.ErrInvalidMessage) {
			text = err.Error()
		}
		if err := h.hub.SendToClient(client.ID, domain.NewStreamError("", domain.ErrCodeBadRequest, text)); err != nil {
			l.Warn().Err(err).Msg("failed to send stream error")
		}
		return
	}

	switch msg := inbound.(type) {
	case *domain.IdentifyMessage:
		err = h.service.HandleIdentify(ctx, client, msg)
	case *domain.StartStreamMessage:
		err = h.service.HandleStartStream(ctx, client, msg)
	case *domain.JoinStreamMessage:
		err = h.service.HandleJoinStream(ctx, client, msg)
	case *domain.LeaveStreamMessage:
		err = h.service.HandleLeaveStream(ctx, client, msg)
	case *domain.EndStreamMessage:
		err = h.service.HandleEndStream(ctx, client, msg)
	case *domain.SignalMessage:
		err = h.service.HandleSignal(ctx, client, msg)
	case *domain.ChatMessage:
		err = h.service.HandleChat(ctx, client, msg)
	case *domain.TipMessage:
		err = h.service.HandleTip(ctx, client, msg)
	case *domain.PingMessage:
		err = h.service.HandlePing(ctx, client)
	}

	if err != nil {
		l.Warn().Err(err).Str(log.FieldEvent, inbound.EventName()).Msg("event handling failed")
	}
}
