package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Get(ctx context.Context, domainID, userID string) (*model.User, error) {
	var rec userModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		Take(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errors.ErrUserNotFound, "user %s", userID)
		}
		return nil, err
	}

	var purchases []purchaseModel
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return toDomainUser(rec, purchases)
}

func (r *userRepository) AddPurchase(ctx context.Context, domainID, userID string, purchase model.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec userModel
		err := tx.Where("user_id = ? AND domain_id = ?", userID, domainID).Take(&rec).Error
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(errors.ErrUserNotFound, "user %s", userID)
			}
			return err
		}
		return tx.Create(&purchaseModel{
			UserID:     userID,
			CourseID:   purchase.CourseID,
			Downloaded: purchase.Downloaded,
		}).Error
	})
}

func (r *userRepository) MarkDownloaded(ctx context.Context, domainID, userID, courseID string) error {
	var rec userModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		Take(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrapf(errors.ErrUserNotFound, "user %s", userID)
		}
		return err
	}
	return r.db.WithContext(ctx).Model(&purchaseModel{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("downloaded", true).Error
}
