package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

type linkRepository struct {
	db *gorm.DB
}

func (r *linkRepository) Create(ctx context.Context, link *model.DownloadLink) error {
	rec := toLinkModel(link)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *linkRepository) GetByToken(ctx context.Context, token string) (*model.DownloadLink, error) {
	var rec linkModel
	err := r.db.WithContext(ctx).Where("token = ?", token).Take(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrLinkNotFound
		}
		return nil, err
	}
	return toDomainLink(rec), nil
}

func (r *linkRepository) MarkConsumed(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).Model(&linkModel{}).
		Where("token = ?", token).
		Update("consumed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&linkModel{}).Error
}
