package content

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/madamaths/madamaths/core"
)

var (
	// errors
	ErrClassNotFound    = core.NewNotFoundError("class not found")
	ErrClassExists      = core.NewConflictError("a class with this name already exists")
	ErrChapterNotFound  = core.NewNotFoundError("chapter not found")
	ErrLessonNotFound   = core.NewNotFoundError("lesson not found")
	ErrExerciseNotFound = core.NewNotFoundError("exercise not found")
)

// Repository stores the class > chapter > lesson > exercise hierarchy.
// Creating a child of a missing parent yields the parent's not found error.
// Listings are in creation order.
type Repository interface {
	CreateClass(ctx context.Context, class Class) (Class, error)
	QueryClasses(ctx context.Context) ([]Class, error)
	// DeleteClass removes the class and everything under it. Students of the class become class-less.
	DeleteClass(ctx context.Context, id int64) error

	CreateChapter(ctx context.Context, chap Chapter) (Chapter, error)
	QueryChapters(ctx context.Context, classID int64) ([]Chapter, error)

	CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
	QueryLessons(ctx context.Context, chapterID int64) ([]LessonSummary, error)
	GetLesson(ctx context.Context, id int64) (Lesson, error)

	CreateExercise(ctx context.Context, ex Exercise) (Exercise, error)
	QueryExercises(ctx context.Context, lessonID int64) ([]Exercise, error)
	GetExercise(ctx context.Context, id int64) (Exercise, error)
}

type Service struct {
	repo    Repository
	nowFunc func() time.Time // mockable
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) now() time.Time {
	return svc.nowFunc().UTC()
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	return svc.repo.CreateClass(ctx, Class{Name: nc.Name, CreatedAt: svc.now()})
}

func (svc *Service) QueryClasses(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) DeleteClass(ctx context.Context, id int64) error {
	return svc.repo.DeleteClass(ctx, id)
}

func (svc *Service) CreateChapter(ctx context.Context, nc NewChapter) (Chapter, error) {
	return svc.repo.CreateChapter(ctx, Chapter{Title: nc.Title, ClassID: nc.ClassID, CreatedAt: svc.now()})
}

func (svc *Service) QueryChapters(ctx context.Context, classID int64) ([]Chapter, error) {
	return svc.repo.QueryChapters(ctx, classID)
}

func (svc *Service) CreateLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	return svc.repo.CreateLesson(ctx, Lesson{
		LessonSummary: LessonSummary{Title: nl.Title, ChapterID: nl.ChapterID, CreatedAt: svc.now()},
		Content:       nl.Content,
	})
}

func (svc *Service) QueryLessons(ctx context.Context, chapterID int64) ([]LessonSummary, error) {
	return svc.repo.QueryLessons(ctx, chapterID)
}

func (svc *Service) GetLesson(ctx context.Context, id int64) (Lesson, error) {
	return svc.repo.GetLesson(ctx, id)
}

func (svc *Service) CreateExercise(ctx context.Context, ne NewExercise) (Exercise, error) {
	var deadline time.Time
	if ne.Deadline != nil {
		deadline = ne.Deadline.UTC()
	}
	return svc.repo.CreateExercise(ctx, Exercise{
		Title:       ne.Title,
		Description: null.NewString(ne.Description, ne.Description != ""),
		LessonID:    ne.LessonID,
		Deadline:    deadline,
		MaxScore:    ne.MaxScore,
		CreatedAt:   svc.now(),
	})
}

func (svc *Service) QueryExercises(ctx context.Context, lessonID int64) ([]Exercise, error) {
	return svc.repo.QueryExercises(ctx, lessonID)
}

func (svc *Service) GetExercise(ctx context.Context, id int64) (Exercise, error) {
	return svc.repo.GetExercise(ctx, id)
}
