package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

type courseRepository struct {
	db *gorm.DB
}

func (r *courseRepository) Get(ctx context.Context, domainID, courseID string) (*model.Course, error) {
	return r.take(ctx, r.db.WithContext(ctx).
		Where("course_id = ? AND domain_id = ?", courseID, domainID))
}

func (r *courseRepository) GetPublished(ctx context.Context, domainID, courseID string) (*model.Course, error) {
	return r.take(ctx, r.db.WithContext(ctx).
		Where("course_id = ? AND domain_id = ? AND published", courseID, domainID))
}

func (r *courseRepository) take(_ context.Context, q *gorm.DB) (*model.Course, error) {
	var rec courseModel
	if err := q.Take(&rec).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCourseNotFound
		}
		return nil, err
	}
	return toDomainCourse(rec), nil
}
