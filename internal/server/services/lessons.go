package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/media"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/repositories/repomanager"
)

const lessonSearchLimit = 25

// LessonService searches the lesson catalogue.
type LessonService struct {
	store     store
	presigner media.Presigner
	log       logging.Logger
}

// NewLessonService constructs a LessonService. presigner may be nil when
// object storage is not configured; covers are then left without URLs.
func NewLessonService(db *sql.DB, m repomanager.RepositoryManager, presigner media.Presigner, log logging.Logger) *LessonService {
	return &LessonService{
		store:     store{db: db, repos: m},
		presigner: presigner,
		log:       log.With("module", "lessons"),
	}
}

// Search returns active lessons, newest published first, optionally
// filtered by a title substring.
func (s *LessonService) Search(ctx context.Context, term string) ([]models.Lesson, error) {
	lessons, err := s.store.repos.Lessons(s.store.db).Search(ctx, term, lessonSearchLimit)
	if err != nil {
		return nil, err
	}

	if s.presigner == nil {
		return lessons, nil
	}

	for i := range lessons {
		key := lessons[i].CoverMediaKey
		if key == nil || *key == "" {
			continue
		}
		url, err := s.presigner.PresignGet(ctx, *key)
		if err != nil {
			s.log.Warn(ctx, "failed to presign lesson cover", "lesson_id", lessons[i].ID, "error", err)
			continue
		}
		lessons[i].CoverURL = url
	}

	return lessons, nil
}
