package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/content"
	"github.com/madamaths/madamaths/core/coursework"
	sqlxrepos "github.com/madamaths/madamaths/storage/database/sqlx"
	testutil "github.com/madamaths/madamaths/tests"
)

func TestContentRepository_Hierarchy(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewContentRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	class, err := repo.CreateClass(ctx, content.Class{Name: "6A", CreatedAt: now})
	require.NoError(t, err)
	_, err = repo.CreateClass(ctx, content.Class{Name: "6A", CreatedAt: now})
	assert.Equal(t, content.ErrClassExists, err)

	_, err = repo.CreateChapter(ctx, content.Chapter{Title: "Algebra", ClassID: 999, CreatedAt: now})
	assert.Equal(t, content.ErrClassNotFound, err)
	chap1, err := repo.CreateChapter(ctx, content.Chapter{Title: "Algebra", ClassID: class.ID, CreatedAt: now})
	require.NoError(t, err)
	chap2, err := repo.CreateChapter(ctx, content.Chapter{Title: "Geometry", ClassID: class.ID, CreatedAt: now})
	require.NoError(t, err)

	chapters, err := repo.QueryChapters(ctx, class.ID)
	require.NoError(t, err)
	if assert.Len(t, chapters, 2) {
		assert.Equal(t, chap1.ID, chapters[0].ID)
		assert.Equal(t, chap2.ID, chapters[1].ID)
	}
	chapters, err = repo.QueryChapters(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, chapters)

	newLesson := func(chapterID int64) content.Lesson {
		return content.Lesson{
			LessonSummary: content.LessonSummary{Title: "Intro", ChapterID: chapterID, CreatedAt: now},
			Content:       "x + 1 = 2",
		}
	}
	_, err = repo.CreateLesson(ctx, newLesson(999))
	assert.Equal(t, content.ErrChapterNotFound, err)
	lesson, err := repo.CreateLesson(ctx, newLesson(chap1.ID))
	require.NoError(t, err)

	lessons, err := repo.QueryLessons(ctx, chap1.ID)
	require.NoError(t, err)
	if assert.Len(t, lessons, 1) {
		assert.Equal(t, lesson.LessonSummary.ID, lessons[0].ID)
		assert.Equal(t, "Intro", lessons[0].Title)
	}

	got, err := repo.GetLesson(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "x + 1 = 2", got.Content)
	_, err = repo.GetLesson(ctx, 999)
	assert.Equal(t, content.ErrLessonNotFound, err)

	deadline := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	newExercise := func(lessonID int64) content.Exercise {
		return content.Exercise{
			Title:       "Solve",
			Description: null.StringFrom("solve for x"),
			LessonID:    lessonID,
			Deadline:    deadline,
			MaxScore:    20,
			CreatedAt:   now,
		}
	}
	_, err = repo.CreateExercise(ctx, newExercise(999))
	assert.Equal(t, content.ErrLessonNotFound, err)
	ex, err := repo.CreateExercise(ctx, newExercise(lesson.ID))
	require.NoError(t, err)

	exercises, err := repo.QueryExercises(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Len(t, exercises, 1)

	gotEx, err := repo.GetExercise(ctx, ex.ID)
	require.NoError(t, err)
	assert.True(t, deadline.Equal(gotEx.Deadline), "deadline = %v, want %v", gotEx.Deadline, deadline)
	assert.Equal(t, 20.0, gotEx.MaxScore)
	assert.Equal(t, null.StringFrom("solve for x"), gotEx.Description)
	_, err = repo.GetExercise(ctx, 999)
	assert.Equal(t, content.ErrExerciseNotFound, err)
}

func TestContentRepository_DeleteClassCascades(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewContentRepository(db)
	accRepo := sqlxrepos.NewAccountRepository(db)
	cwRepo := sqlxrepos.NewCourseworkRepository(db)
	ctx := context.Background()

	ex := testutil.CreateExercise(t, repo, time.Now().Add(time.Hour), 20)
	lesson, err := repo.GetLesson(ctx, ex.LessonID)
	require.NoError(t, err)
	classes, err := repo.QueryClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	class := classes[0]

	student := testutil.CreateAccount(t, accRepo, "", "S001", "Student", "", account.RoleStudent, true, class.ID)
	teacher := testutil.CreateAccount(t, accRepo, "teach", "", "Teacher", "", account.RoleTeacher, true)
	sub, err := cwRepo.CreateSubmission(ctx, coursework.Submission{
		ExerciseID: ex.ID, StudentID: student.ID, Content: "x = 1", SubmittedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = cwRepo.UpsertGrade(ctx, coursework.Grade{
		SubmissionID: sub.ID, Score: 18, TeacherID: teacher.ID, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteClass(ctx, class.ID))
	assert.Equal(t, content.ErrClassNotFound, repo.DeleteClass(ctx, class.ID))

	classes, err = repo.QueryClasses(ctx)
	require.NoError(t, err)
	assert.Empty(t, classes)
	_, err = repo.GetLesson(ctx, lesson.ID)
	assert.Equal(t, content.ErrLessonNotFound, err)
	_, err = repo.GetExercise(ctx, ex.ID)
	assert.Equal(t, content.ErrExerciseNotFound, err)
	_, err = cwRepo.GetSubmissionMaxScore(ctx, sub.ID)
	assert.Equal(t, coursework.ErrSubmissionNotFound, err)

	var grades int
	require.NoError(t, db.GetContext(ctx, &grades, `SELECT COUNT(*) FROM grades`))
	assert.Zero(t, grades)

	// the student survives, without a class
	got, err := accRepo.GetAccountByID(ctx, student.ID)
	require.NoError(t, err)
	assert.False(t, got.ClassID.Valid)
	assert.False(t, got.ClassName.Valid)
}
