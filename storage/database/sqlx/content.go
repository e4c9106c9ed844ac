package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/content"
	"github.com/madamaths/madamaths/storage/database"
)

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) *contentRepository {
	return &contentRepository{db: db}
}

// insert runs an `INSERT ... RETURNING id` query, mapping a foreign key violation to parentErr.
func (repo contentRepository) insert(ctx context.Context, parentErr error, msg, query string, args ...interface{}) (int64, error) {
	var id int64
	err := repo.db.QueryRowxContext(ctx, repo.db.Rebind(query), args...).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case parentErr != nil && database.IsForeignKeyViolation(err):
		return 0, parentErr
	}
	return 0, errors.Wrap(err, msg)
}

func (repo contentRepository) CreateClass(ctx context.Context, class content.Class) (content.Class, error) {
	id, err := repo.insert(ctx, nil, "inserting class",
		`INSERT INTO classes (name, created_at) VALUES (?, ?) RETURNING id`, class.Name, class.CreatedAt.UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return content.Class{}, content.ErrClassExists
		}
		return content.Class{}, err
	}
	class.ID = id
	return class, nil
}

func (repo contentRepository) QueryClasses(ctx context.Context) ([]content.Class, error) {
	classes := make([]content.Class, 0)
	if err := repo.db.SelectContext(ctx, &classes, `SELECT id, name, created_at FROM classes ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	return classes, nil
}

func (repo contentRepository) DeleteClass(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM classes WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n == 0 {
		return content.ErrClassNotFound
	}
	return nil
}

func (repo contentRepository) CreateChapter(ctx context.Context, chap content.Chapter) (content.Chapter, error) {
	id, err := repo.insert(ctx, content.ErrClassNotFound, "inserting chapter",
		`INSERT INTO chapters (title, class_id, created_at) VALUES (?, ?, ?) RETURNING id`,
		chap.Title, chap.ClassID, chap.CreatedAt.UTC())
	if err != nil {
		return content.Chapter{}, err
	}
	chap.ID = id
	return chap, nil
}

func (repo contentRepository) QueryChapters(ctx context.Context, classID int64) ([]content.Chapter, error) {
	chapters := make([]content.Chapter, 0)
	q := repo.db.Rebind(`SELECT id, title, class_id, created_at FROM chapters WHERE class_id = ? ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &chapters, q, classID); err != nil {
		return nil, errors.Wrap(err, "selecting chapters")
	}
	return chapters, nil
}

func (repo contentRepository) CreateLesson(ctx context.Context, lesson content.Lesson) (content.Lesson, error) {
	id, err := repo.insert(ctx, content.ErrChapterNotFound, "inserting lesson",
		`INSERT INTO lessons (title, content, chapter_id, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		lesson.Title, lesson.Content, lesson.ChapterID, lesson.CreatedAt.UTC())
	if err != nil {
		return content.Lesson{}, err
	}
	lesson.ID = id
	return lesson, nil
}

func (repo contentRepository) QueryLessons(ctx context.Context, chapterID int64) ([]content.LessonSummary, error) {
	lessons := make([]content.LessonSummary, 0)
	q := repo.db.Rebind(`SELECT id, title, chapter_id, created_at FROM lessons WHERE chapter_id = ? ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &lessons, q, chapterID); err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}
	return lessons, nil
}

func (repo contentRepository) GetLesson(ctx context.Context, id int64) (content.Lesson, error) {
	var lesson content.Lesson
	q := repo.db.Rebind(`SELECT id, title, content, chapter_id, created_at FROM lessons WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &lesson, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Lesson{}, content.ErrLessonNotFound
		}
		return content.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return lesson, nil
}

const exerciseColumns = `id, title, description, lesson_id, deadline, max_score, created_at`

func (repo contentRepository) CreateExercise(ctx context.Context, ex content.Exercise) (content.Exercise, error) {
	id, err := repo.insert(ctx, content.ErrLessonNotFound, "inserting exercise", `
		INSERT INTO exercises (title, description, lesson_id, deadline, max_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		ex.Title, ex.Description, ex.LessonID, ex.Deadline.UTC(), ex.MaxScore, ex.CreatedAt.UTC())
	if err != nil {
		return content.Exercise{}, err
	}
	ex.ID = id
	return ex, nil
}

func (repo contentRepository) QueryExercises(ctx context.Context, lessonID int64) ([]content.Exercise, error) {
	exercises := make([]content.Exercise, 0)
	q := repo.db.Rebind(`SELECT ` + exerciseColumns + ` FROM exercises WHERE lesson_id = ? ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &exercises, q, lessonID); err != nil {
		return nil, errors.Wrap(err, "selecting exercises")
	}
	return exercises, nil
}

func (repo contentRepository) GetExercise(ctx context.Context, id int64) (content.Exercise, error) {
	var ex content.Exercise
	q := repo.db.Rebind(`SELECT ` + exerciseColumns + ` FROM exercises WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &ex, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Exercise{}, content.ErrExerciseNotFound
		}
		return content.Exercise{}, errors.Wrap(err, "getting exercise")
	}
	return ex, nil
}
