package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"signage-panel/internal/clock"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/slides"
	"signage-panel/internal/store"
	"signage-panel/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ts time.Time) clock.Clock {
	return clock.Func(func() time.Time { return ts })
}

func srcs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Src
	}
	return out
}

func TestComposeCoverAndRunningCampaign(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db, nil)
	g := testutil.CreateGroup(t, db, "Operacao", 1)

	testutil.CreateSlides(t, db, slides.Scope{GroupID: g.ID}, "c0", "c1")
	x := testutil.CreateCampaign(t, db, testutil.CampaignFixture{
		GroupID: g.ID, Name: "X", StartsAt: t0.Add(-time.Hour), EndsAt: t0.Add(time.Hour), Priority: 1,
	})
	testutil.CreateSlides(t, db, slides.Scope{GroupID: g.ID, CampaignID: &x.ID}, "x0", "x1", "x2")

	got, err := NewComposer(st, at(t0)).Compose(context.Background(), g.ID)
	require.NoError(t, err)

	require.NotNil(t, got.Campaign)
	assert.Equal(t, CampaignRef{ID: x.ID, Name: "X"}, *got.Campaign)
	assert.Equal(t, []string{"c0", "c1"}, srcs(got.CoverSlides))
	assert.Equal(t, []string{"x0", "x1", "x2"}, srcs(got.Slides))
}

func TestComposeWithoutRunningCampaign(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db, nil)
	g := testutil.CreateGroup(t, db, "Operacao", 1)
	testutil.CreateSlides(t, db, slides.Scope{GroupID: g.ID}, "c0")

	x := testutil.CreateCampaign(t, db, testutil.CampaignFixture{
		GroupID: g.ID, Name: "X", StartsAt: t0.Add(time.Hour), EndsAt: t0.Add(2 * time.Hour),
	})
	testutil.CreateSlides(t, db, slides.Scope{GroupID: g.ID, CampaignID: &x.ID}, "x0")

	got, err := NewComposer(st, at(t0)).Compose(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Campaign)
	assert.Equal(t, []string{"c0"}, srcs(got.CoverSlides))
	assert.Empty(t, got.Slides)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"campaign":null,"coverSlides":[{"id":1,"type":"image","name":"c0","src":"c0","duration":5000,"isLocked":false}],"slides":[]}`,
		string(raw))
}

func TestComposeFollowsDisableAndReEnable(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db, nil)
	g := testutil.CreateGroup(t, db, "Operacao", 1)
	c := testutil.CreateCampaign(t, db, testutil.CampaignFixture{
		GroupID: g.ID, Name: "X", StartsAt: t0.Add(-time.Hour), EndsAt: t0.Add(time.Hour),
	})
	composer := NewComposer(st, at(t0))
	ctx := context.Background()

	got, err := composer.Compose(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Campaign)

	require.NoError(t, db.Model(&campaigns.Campaign{}).Where("id = ?", c.ID).Update("enabled", false).Error)
	got, err = composer.Compose(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Campaign)

	require.NoError(t, db.Model(&campaigns.Campaign{}).Where("id = ?", c.ID).Update("enabled", true).Error)
	got, err = composer.Compose(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Campaign)
	assert.Equal(t, c.ID, got.Campaign.ID)
}

func TestComposePicksLowestPriorityNumber(t *testing.T) {
	db := testutil.NewDB(t)
	st := store.New(db, nil)
	g := testutil.CreateGroup(t, db, "Operacao", 1)
	testutil.CreateCampaign(t, db, testutil.CampaignFixture{
		GroupID: g.ID, Name: "A", StartsAt: t0.Add(-time.Hour), EndsAt: t0.Add(time.Hour), Priority: 2,
	})
	b := testutil.CreateCampaign(t, db, testutil.CampaignFixture{
		GroupID: g.ID, Name: "B", StartsAt: t0.Add(-30 * time.Minute), EndsAt: t0.Add(time.Hour), Priority: 1,
	})

	got, err := NewComposer(st, at(t0)).Compose(context.Background(), g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Campaign)
	assert.Equal(t, b.ID, got.Campaign.ID)
}

type failingSource struct{}

func (failingSource) ListCampaigns(context.Context, uint) ([]campaigns.Campaign, error) {
	return nil, errors.New("db down")
}

func (failingSource) ListSlides(context.Context, slides.Scope) ([]slides.Slide, error) {
	return nil, nil
}

func TestComposePropagatesStoreErrors(t *testing.T) {
	_, err := NewComposer(failingSource{}, at(t0)).Compose(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
