package coursework

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

type Submission struct {
	ID          int64     `json:"id" db:"id"`
	ExerciseID  int64     `json:"exercise_id" db:"exercise_id"`
	StudentID   int64     `json:"student_id" db:"student_id"`
	Content     string    `json:"content" db:"content"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

// SubmissionView is a submission listed under its exercise, with its student's name and its grade, if any.
type SubmissionView struct {
	Submission
	StudentName string       `json:"student_name" db:"student_name"`
	Score       null.Float64 `json:"score" db:"score"`
	Feedback    null.String  `json:"feedback" db:"feedback"`
	GradedBy    null.Int64   `json:"graded_by" db:"graded_by"`
}

type NewSubmission struct {
	ExerciseID int64  `json:"exercise_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,notblank"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

type Grade struct {
	ID           int64       `json:"id" db:"id"`
	SubmissionID int64       `json:"submission_id" db:"submission_id"`
	Score        float64     `json:"score" db:"score"`
	Feedback     null.String `json:"feedback" db:"feedback"`
	TeacherID    int64       `json:"teacher_id" db:"teacher_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

type NewGrade struct {
	SubmissionID int64    `json:"submission_id" validate:"required,gt=0"`
	Score        *float64 `json:"score" validate:"required"`
	Feedback     string   `json:"feedback"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	return validate.Struct(ng)
}
