package campaigns

import (
	"net/http"
	"strings"
	"time"

	"signage-panel/internal/api/common"
	"signage-panel/internal/app/http/middleware"
	"signage-panel/internal/clock"
	"signage-panel/internal/domain/access"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/media"
	"signage-panel/internal/realtime"
	"signage-panel/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store     *store.Store
	Reclaimer media.Reclaimer
	Events    realtime.Publisher
	Clock     clock.Clock
	// Location interprets timestamps sent without a zone.
	Location *time.Location
}

// CampaignDTO is a campaign annotated with its status at response time.
type CampaignDTO struct {
	campaigns.Campaign
	Status campaigns.Status `json:"status"`
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := access.ResolveGroup(ctx, h.Store, middleware.CurrentUser(c), common.GroupRequest(c, 0, ""), false)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	list, err := h.Store.ListCampaigns(ctx, g.ID)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	now := h.now()
	out := make([]CampaignDTO, 0, len(list))
	for _, camp := range list {
		out = append(out, CampaignDTO{Campaign: camp, Status: camp.Status(now)})
	}
	c.JSON(http.StatusOK, out)
}

type campaignInput struct {
	GroupID  uint    `json:"groupId"`
	Group    string  `json:"group"`
	Name     *string `json:"name"`
	StartsAt *string `json:"startsAt"`
	EndsAt   *string `json:"endsAt"`
	Enabled  *bool   `json:"enabled"`
	Priority *int    `json:"priority"`
}

// apply copies the fields present in the input onto camp.
func (in campaignInput) apply(camp *campaigns.Campaign, loc *time.Location) error {
	if in.Name != nil {
		camp.Name = strings.TrimSpace(*in.Name)
	}
	if in.StartsAt != nil {
		t, err := campaigns.ParseTimestamp(strings.TrimSpace(*in.StartsAt), loc)
		if err != nil {
			return err
		}
		camp.StartsAt = t
	}
	if in.EndsAt != nil {
		t, err := campaigns.ParseTimestamp(strings.TrimSpace(*in.EndsAt), loc)
		if err != nil {
			return err
		}
		camp.EndsAt = t
	}
	if in.Enabled != nil {
		camp.Enabled = *in.Enabled
	}
	if in.Priority != nil {
		camp.Priority = *in.Priority
	}
	return nil
}

func (h *Handler) Create(c *gin.Context) {
	var input campaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	ctx := c.Request.Context()
	u := middleware.CurrentUser(c)
	g, err := access.ResolveGroup(ctx, h.Store, u, common.GroupRequest(c, input.GroupID, input.Group), true)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	camp := campaigns.Campaign{GroupID: g.ID, Enabled: true, Priority: 1, CreatedBy: &u.ID}
	if err := input.apply(&camp, h.Location); err != nil {
		common.WriteError(c, err)
		return
	}
	if err := h.Store.CreateCampaign(ctx, &camp); err != nil {
		common.WriteError(c, err)
		return
	}

	h.Events.Publish(ctx, realtime.PlaylistUpdate(g.ID, ""))
	c.JSON(http.StatusCreated, CampaignDTO{Campaign: camp, Status: camp.Status(h.now())})
}

// load fetches the campaign named in the path and checks the caller may
// change it.
func (h *Handler) load(c *gin.Context) (campaigns.Campaign, bool) {
	camp, err := h.Store.GetCampaign(c.Request.Context(), common.ParseID(c.Param("id")))
	if err != nil {
		common.WriteError(c, err)
		return camp, false
	}
	if !access.CanWriteGroup(middleware.CurrentUser(c), camp.GroupID) {
		common.WriteError(c, access.ErrForbidden)
		return camp, false
	}
	return camp, true
}

func (h *Handler) Update(c *gin.Context) {
	var input campaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	camp, ok := h.load(c)
	if !ok {
		return
	}
	if err := input.apply(&camp, h.Location); err != nil {
		common.WriteError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.UpdateCampaign(ctx, &camp); err != nil {
		common.WriteError(c, err)
		return
	}
	h.Events.Publish(ctx, realtime.PlaylistUpdate(camp.GroupID, ""))
	c.JSON(http.StatusOK, CampaignDTO{Campaign: camp, Status: camp.Status(h.now())})
}

// Delete removes the campaign with its slides and reclaims unused files.
func (h *Handler) Delete(c *gin.Context) {
	camp, ok := h.load(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	sources, err := h.Store.DeleteCampaignCascade(ctx, camp.ID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	out := h.Reclaimer.Reclaim(ctx, sources)

	h.Events.Publish(ctx, realtime.PlaylistUpdate(camp.GroupID, ""))
	c.JSON(http.StatusOK, gin.H{"ok": true, "filesRemoved": len(out.Removed)})
}
