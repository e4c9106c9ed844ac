package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/content"
	"github.com/madamaths/madamaths/storage/database"
)

var seq int64

// PrepareDB opens a private in-memory database, migrates it and closes it when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(core.NewTestConfig())
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// CreateAccount stores an account that does not have to change its password.
// Either uname or code may be empty.
func CreateAccount(
	t *testing.T,
	repo account.Repository,
	uname, code, name, pwd string,
	role account.Role,
	isActive bool,
	classID ...int64,
) account.Account {
	t.Helper()
	acc := account.Account{
		Username:    null.NewString(uname, uname != ""),
		StudentCode: null.NewString(code, code != ""),
		FullName:    name,
		Role:        role,
		IsActive:    isActive,
		CreatedAt:   time.Now().UTC(),
	}
	if len(classID) > 0 && classID[0] != 0 {
		acc.ClassID = null.Int64From(classID[0])
	}
	if pwd == "" {
		pwd = "Pwd-" + name
	}
	if err := acc.SetPassword(pwd); err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

// CreateClass stores a class with a unique name derived from name.
func CreateClass(t *testing.T, repo content.Repository, name string) content.Class {
	t.Helper()
	if name == "" {
		name = fmt.Sprintf("class-%d", atomic.AddInt64(&seq, 1))
	}
	class, err := repo.CreateClass(context.Background(), content.Class{Name: name, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return class
}

// CreateExercise stores an exercise under a fresh class > chapter > lesson chain.
func CreateExercise(t *testing.T, repo content.Repository, deadline time.Time, maxScore float64) content.Exercise {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	class := CreateClass(t, repo, "")
	chap, err := repo.CreateChapter(ctx, content.Chapter{Title: "Chapter", ClassID: class.ID, CreatedAt: now})
	if err != nil {
		t.Fatalf("CreateExercise() failed: %v", err)
	}
	lesson, err := repo.CreateLesson(ctx, content.Lesson{
		LessonSummary: content.LessonSummary{Title: "Lesson", ChapterID: chap.ID, CreatedAt: now},
		Content:       "Lesson content",
	})
	if err != nil {
		t.Fatalf("CreateExercise() failed: %v", err)
	}
	ex, err := repo.CreateExercise(ctx, content.Exercise{
		Title:     "Exercise",
		LessonID:  lesson.ID,
		Deadline:  deadline.UTC(),
		MaxScore:  maxScore,
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateExercise() failed: %v", err)
	}
	return ex
}
