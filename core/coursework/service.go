package coursework

import (
	"context"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/content"
)

var (
	// errors
	ErrExerciseNotFound   = content.ErrExerciseNotFound
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
	ErrDeadlinePassed     = core.NewInvalidError("the deadline for this exercise has passed")
	ErrAlreadySubmitted   = core.NewConflictError("you have already submitted this exercise")
	ErrScoreOutOfRange    = core.NewValidationError(nil, core.FieldError{
		Field: "score",
		Error: "score must be between 0 and the exercise's max score",
	})
)

type (
	Repository interface {
		// CreateSubmission inserts sub; a second submission for the same exercise and student
		// yields ErrAlreadySubmitted.
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		// QuerySubmissions lists the submissions of an exercise, restricted to studentID unless it is 0.
		QuerySubmissions(ctx context.Context, exerciseID, studentID int64) ([]SubmissionView, error)
		// GetSubmissionMaxScore returns the max score of the exercise the submission answers.
		GetSubmissionMaxScore(ctx context.Context, submissionID int64) (float64, error)
		// UpsertGrade creates the submission's grade or updates its score and feedback in place.
		// The teacher of record is the first grader.
		UpsertGrade(ctx context.Context, grade Grade) (Grade, error)
	}

	ExerciseGetter interface {
		GetExercise(ctx context.Context, id int64) (content.Exercise, error)
	}

	Service struct {
		repo      Repository
		exercises ExerciseGetter
		nowFunc   func() time.Time // mockable
	}
)

func NewService(repo Repository, exercises ExerciseGetter) *Service {
	return &Service{repo: repo, exercises: exercises, nowFunc: time.Now}
}

// Submit records a student's answer to an exercise. Submitting exactly at the deadline is accepted.
func (svc *Service) Submit(ctx context.Context, studentID int64, ns NewSubmission) (Submission, error) {
	ex, err := svc.exercises.GetExercise(ctx, ns.ExerciseID)
	if err != nil {
		return Submission{}, err
	}

	now := svc.nowFunc().UTC()
	if now.After(ex.Deadline) {
		return Submission{}, ErrDeadlinePassed
	}
	return svc.repo.CreateSubmission(ctx, Submission{
		ExerciseID:  ex.ID,
		StudentID:   studentID,
		Content:     ns.Content,
		SubmittedAt: now,
	})
}

// Grade scores a submission, replacing any previous score and feedback.
func (svc *Service) Grade(ctx context.Context, graderID int64, ng NewGrade) (Grade, error) {
	maxScore, err := svc.repo.GetSubmissionMaxScore(ctx, ng.SubmissionID)
	if err != nil {
		return Grade{}, err
	}
	if ng.Score == nil || *ng.Score < 0 || *ng.Score > maxScore {
		return Grade{}, ErrScoreOutOfRange
	}

	feedback := strings.TrimSpace(ng.Feedback)
	now := svc.nowFunc().UTC()
	return svc.repo.UpsertGrade(ctx, Grade{
		SubmissionID: ng.SubmissionID,
		Score:        *ng.Score,
		Feedback:     null.NewString(feedback, feedback != ""),
		TeacherID:    graderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// QuerySubmissions lists an exercise's submissions as seen by viewer: staff see every
// submission, students only their own.
func (svc *Service) QuerySubmissions(ctx context.Context, viewer account.Account, exerciseID int64) ([]SubmissionView, error) {
	if _, err := svc.exercises.GetExercise(ctx, exerciseID); err != nil {
		return nil, err
	}
	var studentID int64
	if !viewer.IsStaff() {
		studentID = viewer.ID
	}
	return svc.repo.QuerySubmissions(ctx, exerciseID, studentID)
}
