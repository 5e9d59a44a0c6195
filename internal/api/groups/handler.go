package groups

import (
	"net/http"
	"strings"

	"signage-panel/internal/api/common"
	"signage-panel/internal/app/http/middleware"
	"signage-panel/internal/domain/access"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/media"
	"signage-panel/internal/domain/slides"
	"signage-panel/internal/infra/storage"
	"signage-panel/internal/realtime"
	"signage-panel/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store     *store.Store
	Files     *storage.Local
	Reclaimer media.Reclaimer
	Events    realtime.Publisher
}

// List returns the groups visible to the caller in display order.
func (h *Handler) List(c *gin.Context) {
	all, err := h.Store.ListGroups(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	u := middleware.CurrentUser(c)
	out := make([]groups.Group, 0, len(all))
	for _, g := range all {
		if u == nil || u.CanAccessGroup(g.ID) {
			out = append(out, g)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Create(c *gin.Context) {
	var input struct {
		Name       string `json:"name" binding:"required"`
		Background string `json:"background"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
		return
	}

	g, err := h.Store.CreateGroup(c.Request.Context(), input.Name, strings.TrimSpace(input.Background))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	h.Events.Publish(c.Request.Context(), realtime.GroupsUpdate(&g.ID))
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) Reorder(c *gin.Context) {
	var input struct {
		Order []uint `json:"order"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Order) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group order is required"})
		return
	}

	if err := h.Store.ReorderGroups(c.Request.Context(), input.Order); err != nil {
		if common.StatusFor(err) == http.StatusNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group list"})
			return
		}
		common.WriteError(c, err)
		return
	}
	h.Events.Publish(c.Request.Context(), realtime.GroupsUpdate(nil))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type settingsDTO struct {
	GroupID      uint    `json:"groupId"`
	GroupName    string  `json:"groupName"`
	Background   string  `json:"background"`
	DefaultImage *string `json:"defaultImage"`
}

func toSettings(g groups.Group) settingsDTO {
	return settingsDTO{
		GroupID:      g.ID,
		GroupName:    g.Name,
		Background:   g.EffectiveBackground(),
		DefaultImage: g.DefaultImage,
	}
}

func (h *Handler) GetSettings(c *gin.Context) {
	g, err := access.ResolveGroup(c.Request.Context(), h.Store, middleware.CurrentUser(c), common.GroupRequest(c, 0, ""), false)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettings(g))
}

// UpdateSettings sets the background (white when omitted) and, when given,
// the default image. An empty defaultImage clears it; a replaced or cleared
// image file is reclaimed when nothing else uses it.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var input struct {
		GroupID      uint    `json:"groupId"`
		Group        string  `json:"group"`
		Background   string  `json:"background"`
		DefaultImage *string `json:"defaultImage"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	ctx := c.Request.Context()
	g, err := access.ResolveGroup(ctx, h.Store, middleware.CurrentUser(c), common.GroupRequest(c, input.GroupID, input.Group), true)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	background := strings.TrimSpace(input.Background)
	if background == "" {
		background = groups.DefaultBackground
	}
	var image *string
	if input.DefaultImage != nil {
		trimmed := strings.TrimSpace(*input.DefaultImage)
		image = &trimmed
	}

	updated, err := h.Store.UpdateSettings(ctx, g.ID, background, image)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	if image != nil && g.DefaultImage != nil && *g.DefaultImage != *image {
		h.Reclaimer.Reclaim(ctx, []string{*g.DefaultImage})
	}
	h.Events.Publish(ctx, realtime.SettingsUpdate(updated.ID, updated.EffectiveBackground(), updated.DefaultImage))
	c.JSON(http.StatusOK, toSettings(updated))
}

// UploadDefaultImage stores an image and makes it the group's default. The
// previous default image file is reclaimed when nothing else uses it.
func (h *Handler) UploadDefaultImage(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := access.ResolveGroup(ctx, h.Store, middleware.CurrentUser(c), common.FormGroupRequest(c), true)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("defaultImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload a valid image"})
		return
	}
	defer file.Close()
	if slides.TypeFromMIME(header.Header.Get("Content-Type")) != slides.TypeImage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload a valid image"})
		return
	}

	src, err := h.Files.Save(slides.Folder(slides.TypeImage), header.Filename, file)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	updated, err := h.Store.UpdateSettings(ctx, g.ID, "", &src)
	if err != nil {
		_ = h.Files.Remove(src)
		common.WriteError(c, err)
		return
	}
	if g.DefaultImage != nil && *g.DefaultImage != src {
		h.Reclaimer.Reclaim(ctx, []string{*g.DefaultImage})
	}

	h.Events.Publish(ctx, realtime.SettingsUpdate(updated.ID, updated.EffectiveBackground(), updated.DefaultImage))
	c.JSON(http.StatusOK, gin.H{"defaultImage": src})
}
