package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/registry"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/service"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/response"
)

// LiveStream is one entry of the live stream listing.
type LiveStream struct {
	StreamID      string `json:"streamId"`
	BroadcasterID string `json:"broadcasterId"`
	ViewerCount   int    `json:"viewerCount"`
}

// Handler serves the read-only HTTP API over the coordinator state.
type Handler struct {
	service service.CoordinatorService
}

func NewHandler(svc service.CoordinatorService) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		streams := api.Group("/streams")
		{
			streams.GET("/live", h.ListLive)
			streams.GET("/:id/presence", h.GetPresence)
			streams.GET("/:id/recaps", h.ListRecaps)
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListLive lists the rooms hosted on this instance.
func (h *Handler) ListLive(c *gin.Context) {
	out := lo.Map(h.service.LiveStreams(), func(s registry.Snapshot, _ int) LiveStream {
		return LiveStream{
			StreamID:      s.StreamID,
			BroadcasterID: s.BroadcasterConnID,
			ViewerCount:   s.ViewerCount,
		}
	})
	response.List(c, out, len(out))
}

func (h *Handler) GetPresence(c *gin.Context) {
	snap, ok := h.service.Presence(c.Param("id"))
	if !ok {
		response.NotFound(c, "stream is not live")
		return
	}
	response.Success(c, snap)
}

func (h *Handler) ListRecaps(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	recaps, err := h.service.Recaps(ctx, c.Param("id"))
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, c.Param("id")).Msg("failed to list recaps")
		response.InternalError(c, "failed to list recaps")
		return
	}
	response.List(c, recaps, len(recaps))
}
