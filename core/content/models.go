package content

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/madamaths/madamaths/core"
)

type Class struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type NewClass struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type Chapter struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	ClassID   int64     `json:"class_id" db:"class_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type NewChapter struct {
	Title   string `json:"title" validate:"required,notblank,max=255"`
	ClassID int64  `json:"class_id" validate:"required,gt=0"`
}

func (nc *NewChapter) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	return validate.Struct(nc)
}

// LessonSummary is a Lesson without its content, as listed under a chapter.
type LessonSummary struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	ChapterID int64     `json:"chapter_id" db:"chapter_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Lesson struct {
	LessonSummary
	Content string `json:"content" db:"content"`
}

type NewLesson struct {
	Title     string `json:"title" validate:"required,notblank,max=255"`
	Content   string `json:"content" validate:"required,notblank"`
	ChapterID int64  `json:"chapter_id" validate:"required,gt=0"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

type Exercise struct {
	ID          int64       `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description null.String `json:"description" db:"description"`
	LessonID    int64       `json:"lesson_id" db:"lesson_id"`
	Deadline    time.Time   `json:"deadline" db:"deadline"` // UTC
	MaxScore    float64     `json:"max_score" db:"max_score"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

type NewExercise struct {
	Title       string     `json:"title" validate:"required,notblank,max=255"`
	Description string     `json:"description"`
	LessonID    int64      `json:"lesson_id" validate:"required,gt=0"`
	Deadline    *time.Time `json:"deadline" validate:"required"` // RFC 3339
	MaxScore    float64    `json:"max_score" validate:"gt=0"`
}

func (ne *NewExercise) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	return validate.Struct(ne)
}
