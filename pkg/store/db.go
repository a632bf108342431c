package store

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/errors"
)

// Connect opens and validates a Postgres-backed GORM connection pool.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access sql connection pool")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	logger.Debug("database connection established")
	return db, nil
}

// Repositories bundles every store implementation over a shared connection.
type Repositories struct {
	Sites   SiteStore
	Courses CourseStore
	Lessons LessonStore
	Users   UserStore
	Links   LinkStore
	Orders  OrderStore
}

// NewRepositories wires the stores onto the given connection.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Sites:   &siteRepository{db: db},
		Courses: &courseRepository{db: db},
		Lessons: &lessonRepository{db: db},
		Users:   &userRepository{db: db},
		Links:   &linkRepository{db: db},
		Orders:  &orderRepository{db: db},
	}
}
