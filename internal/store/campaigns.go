package store

import (
	"context"
	"errors"

	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/slides"

	"gorm.io/gorm"
)

// ListCampaigns returns a group's campaigns in selection order.
func (s *Store) ListCampaigns(ctx context.Context, groupID uint) ([]campaigns.Campaign, error) {
	var list []campaigns.Campaign
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("priority ASC, starts_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, s.logError("store_list_campaigns_failed", err, "group_id", groupID)
	}
	return list, nil
}

// ListAllCampaigns returns every campaign of every group, by id.
func (s *Store) ListAllCampaigns(ctx context.Context) ([]campaigns.Campaign, error) {
	var list []campaigns.Campaign
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, s.logError("store_list_all_campaigns_failed", err)
	}
	return list, nil
}

func (s *Store) GetCampaign(ctx context.Context, id uint) (campaigns.Campaign, error) {
	var c campaigns.Campaign
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return campaigns.Campaign{}, campaigns.ErrNotFound
	}
	if err != nil {
		return campaigns.Campaign{}, s.logError("store_get_campaign_failed", err, "campaign_id", id)
	}
	return c, nil
}

func (s *Store) CreateCampaign(ctx context.Context, c *campaigns.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return s.logError("store_create_campaign_failed", err, "group_id", c.GroupID)
	}
	return nil
}

// UpdateCampaign writes every column of c, including false and zero values.
func (s *Store) UpdateCampaign(ctx context.Context, c *campaigns.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(c).Select("name", "starts_at", "ends_at", "enabled", "priority").Updates(c)
	if res.Error != nil {
		return s.logError("store_update_campaign_failed", res.Error, "campaign_id", c.ID)
	}
	if res.RowsAffected == 0 {
		return campaigns.ErrNotFound
	}
	return nil
}

// DeleteCampaignCascade removes a campaign and all of its slides in one
// transaction and returns the sources those slides pointed at.
func (s *Store) DeleteCampaignCascade(ctx context.Context, id uint) ([]string, error) {
	var sources []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&slides.Slide{}).Where("campaign_id = ?", id).Pluck("src", &sources).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", id).Delete(&slides.Slide{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&campaigns.Campaign{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return campaigns.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, campaigns.ErrNotFound) {
			return nil, err
		}
		return nil, s.logError("store_delete_campaign_failed", err, "campaign_id", id)
	}
	return sources, nil
}
