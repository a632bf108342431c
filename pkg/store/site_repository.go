package store

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

type siteRepository struct {
	db *gorm.DB
}

func (r *siteRepository) GetByDomain(ctx context.Context, domainName string) (*model.Site, error) {
	var rec siteModel
	err := r.db.WithContext(ctx).Where("name = ?", domainName).Take(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errors.ErrSiteNotFound, "domain %s", domainName)
		}
		return nil, err
	}
	return toDomainSite(rec)
}

func (r *siteRepository) SaveSettings(ctx context.Context, siteID string, settings model.SiteSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "failed to encode site settings")
	}
	res := r.db.WithContext(ctx).Model(&siteModel{}).
		Where("site_id = ?", siteID).
		Update("settings", string(raw))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(errors.ErrSiteNotFound, "site %s", siteID)
	}
	return nil
}
