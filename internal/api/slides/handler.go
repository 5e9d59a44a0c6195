package slides

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"signage-panel/internal/api/common"
	"signage-panel/internal/app/http/middleware"
	"signage-panel/internal/domain/access"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/media"
	"signage-panel/internal/domain/slides"
	"signage-panel/internal/infra/storage"
	"signage-panel/internal/realtime"
	"signage-panel/internal/store"

	"github.com/gin-gonic/gin"
)

// defaultDurationSeconds applies when an upload names no duration.
const defaultDurationSeconds = 5

type Handler struct {
	Store     *store.Store
	Files     *storage.Local
	Reclaimer media.Reclaimer
	Events    realtime.Publisher
}

// scopeFor validates that campaignID, when set, belongs to g.
func (h *Handler) scopeFor(c *gin.Context, g groups.Group, campaignID uint) (slides.Scope, error) {
	sc := slides.Scope{GroupID: g.ID}
	if campaignID == 0 {
		return sc, nil
	}
	camp, err := h.Store.GetCampaign(c.Request.Context(), campaignID)
	if err != nil {
		return sc, err
	}
	if camp.GroupID != g.ID {
		return sc, campaigns.ErrNotFound
	}
	sc.CampaignID = &camp.ID
	return sc, nil
}

func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := access.ResolveGroup(ctx, h.Store, middleware.CurrentUser(c), common.GroupRequest(c, 0, ""), false)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	sc, err := h.scopeFor(c, g, common.ParseID(c.Query("campaignId")))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	list, err := h.Store.ListSlides(ctx, sc)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := access.ResolveGroup(ctx, h.Store, middleware.CurrentUser(c), common.FormGroupRequest(c), true)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	sc, err := h.scopeFor(c, g, common.ParseID(c.PostForm("campaignId")))
	if err != nil {
		common.WriteError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	seconds := float64(defaultDurationSeconds)
	if raw := strings.TrimSpace(c.PostForm("duration")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			seconds = v
		}
	}
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = header.Filename
	}

	kind := slides.TypeFromMIME(header.Header.Get("Content-Type"))
	src, err := h.Files.Save(slides.Folder(kind), header.Filename, file)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	sl := slides.Slide{
		GroupID:    g.ID,
		CampaignID: sc.CampaignID,
		Type:       kind,
		Name:       name,
		Src:        src,
		Duration:   slides.NormalizeDuration(seconds),
	}
	if err := h.Store.AppendSlide(ctx, &sl); err != nil {
		_ = h.Files.Remove(src)
		common.WriteError(c, err)
		return
	}

	h.Events.Publish(ctx, realtime.PlaylistUpdate(g.ID, ""))
	c.JSON(http.StatusCreated, sl)
}

type positionInput struct {
	GroupID    uint   `json:"groupId"`
	Group      string `json:"group"`
	CampaignID uint   `json:"campaignId"`
	Index      *int   `json:"index"`
	Dir        *int   `json:"dir"`
}

// Reorder moves the slide at index one step in dir. Moves past either end
// are accepted and answer with status "unchanged".
func (h *Handler) Reorder(c *gin.Context) {
	var input positionInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Index == nil || input.Dir == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index and dir are required"})
		return
	}

	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)
	g, err := access.ResolveGroup(ctx, h.Store, u, common.GroupRequest(c, input.GroupID, input.Group), true)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	sc, err := h.scopeFor(c, g, input.CampaignID)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	moved, err := h.Store.MoveSlide(ctx, sc, *input.Index, *input.Dir, u.IsMaster())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	if !moved {
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": "unchanged"})
		return
	}
	h.Events.Publish(ctx, realtime.PlaylistUpdate(g.ID, ""))
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "moved"})
}

func (h *Handler) Delete(c *gin.Context) {
	var input positionInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)
	g, err := access.ResolveGroup(ctx, h.Store, u, common.GroupRequest(c, input.GroupID, input.Group), true)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	sc, err := h.scopeFor(c, g, input.CampaignID)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	removed, err := h.Store.DeleteSlideAt(ctx, sc, *input.Index, u.IsMaster())
	if err != nil {
		if errors.Is(err, slides.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "unchanged"})
			return
		}
		common.WriteError(c, err)
		return
	}
	h.Reclaimer.Reclaim(ctx, []string{removed.Src})

	h.Events.Publish(ctx, realtime.PlaylistUpdate(g.ID, ""))
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "deleted"})
}

// Update edits a slide's name, duration (seconds) or lock. Only masters may
// touch locked slides or change the lock.
func (h *Handler) Update(c *gin.Context) {
	var input struct {
		Name     *string  `json:"name"`
		Duration *float64 `json:"duration"`
		IsLocked *bool    `json:"isLocked"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)
	sl, err := h.Store.GetSlide(ctx, common.ParseID(c.Param("id")))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	if !access.CanWriteGroup(u, sl.GroupID) {
		common.WriteError(c, access.ErrForbidden)
		return
	}
	if (sl.Locked || input.IsLocked != nil) && !u.IsMaster() {
		common.WriteError(c, slides.ErrLocked)
		return
	}

	var patch store.SlidePatch
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		patch.Name = &name
	}
	if input.Duration != nil {
		ms := slides.NormalizeDuration(*input.Duration)
		patch.Duration = &ms
	}
	patch.Locked = input.IsLocked

	updated, err := h.Store.UpdateSlide(ctx, sl.ID, patch)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	h.Events.Publish(ctx, realtime.PlaylistUpdate(updated.GroupID, ""))
	c.JSON(http.StatusOK, updated)
}
