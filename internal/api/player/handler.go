package player

import (
	"net/http"
	"time"

	"signage-panel/internal/api/common"
	"signage-panel/internal/app/http/middleware"
	"signage-panel/internal/domain/access"
	"signage-panel/internal/playlist"
	"signage-panel/internal/store"

	"github.com/gin-gonic/gin"
)

// Handler serves the read endpoints used by the player screens.
type Handler struct {
	Store    *store.Store
	Composer *playlist.Composer
	// RefreshInterval is how often players re-fetch on their own.
	RefreshInterval time.Duration
}

func (h *Handler) Playlist(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := access.ResolveGroup(ctx, h.Store, middleware.CurrentUser(c), common.GroupRequest(c, 0, ""), false)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	pl, err := h.Composer.Compose(ctx, g.ID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, pl)
}

func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"refreshIntervalMs": h.RefreshInterval.Milliseconds()})
}
