package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/glorpus-work/schoolyard/pkg/model"
)

type lessonRepository struct {
	db *gorm.DB
}

func (r *lessonRepository) ListByCourse(ctx context.Context, domainID, courseID string) ([]model.Lesson, error) {
	var recs []lessonModel
	// The download pipeline only needs the media reference per lesson.
	err := r.db.WithContext(ctx).
		Select("lesson_id", "media_id").
		Where("course_id = ? AND domain_id = ?", courseID, domainID).
		Order("position").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	lessons := make([]model.Lesson, 0, len(recs))
	for _, rec := range recs {
		lessons = append(lessons, toDomainLesson(rec))
	}
	return lessons, nil
}
