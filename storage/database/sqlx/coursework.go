package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/madamaths/madamaths/core/coursework"
	"github.com/madamaths/madamaths/storage/database"
)

type courseworkRepository struct {
	db *sqlx.DB
}

var _ coursework.Repository = (*courseworkRepository)(nil) // interface compliance check

func NewCourseworkRepository(db *sqlx.DB) *courseworkRepository {
	return &courseworkRepository{db: db}
}

// CreateSubmission relies on the (exercise_id, student_id) unique constraint alone,
// so concurrent submissions for the same pair cannot both succeed.
func (repo courseworkRepository) CreateSubmission(ctx context.Context, sub coursework.Submission) (coursework.Submission, error) {
	q := repo.db.Rebind(`
		INSERT INTO submissions (exercise_id, student_id, content, submitted_at)
		VALUES (?, ?, ?, ?) RETURNING id`)

	err := repo.db.QueryRowxContext(ctx, q, sub.ExerciseID, sub.StudentID, sub.Content, sub.SubmittedAt.UTC()).Scan(&sub.ID)
	switch {
	case err == nil:
		return sub, nil
	case database.IsUniqueViolation(err):
		return coursework.Submission{}, coursework.ErrAlreadySubmitted
	case database.IsForeignKeyViolation(err):
		return coursework.Submission{}, coursework.ErrExerciseNotFound
	}
	return coursework.Submission{}, errors.Wrap(err, "inserting submission")
}

func (repo courseworkRepository) QuerySubmissions(ctx context.Context, exerciseID, studentID int64) ([]coursework.SubmissionView, error) {
	q := `
		SELECT s.id, s.exercise_id, s.student_id, s.content, s.submitted_at,
			a.full_name AS student_name, g.score, g.feedback, g.teacher_id AS graded_by
		FROM submissions s
		JOIN accounts a ON a.id = s.student_id
		LEFT JOIN grades g ON g.submission_id = s.id
		WHERE s.exercise_id = ?`
	args := []interface{}{exerciseID}
	if studentID != 0 {
		q += ` AND s.student_id = ?`
		args = append(args, studentID)
	}
	q += ` ORDER BY s.id`

	subs := make([]coursework.SubmissionView, 0)
	if err := repo.db.SelectContext(ctx, &subs, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting submissions")
	}
	return subs, nil
}

func (repo courseworkRepository) GetSubmissionMaxScore(ctx context.Context, submissionID int64) (float64, error) {
	var maxScore float64
	q := repo.db.Rebind(`
		SELECT e.max_score FROM submissions s
		JOIN exercises e ON e.id = s.exercise_id
		WHERE s.id = ?`)
	if err := repo.db.GetContext(ctx, &maxScore, q, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, coursework.ErrSubmissionNotFound
		}
		return 0, errors.Wrap(err, "getting submission max score")
	}
	return maxScore, nil
}

func (repo courseworkRepository) UpsertGrade(ctx context.Context, grade coursework.Grade) (coursework.Grade, error) {
	q := repo.db.Rebind(`
		INSERT INTO grades (submission_id, score, feedback, teacher_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (submission_id) DO UPDATE
			SET score = excluded.score, feedback = excluded.feedback, updated_at = excluded.updated_at`)

	_, err := repo.db.ExecContext(ctx, q,
		grade.SubmissionID, grade.Score, grade.Feedback, grade.TeacherID, grade.CreatedAt.UTC(), grade.UpdatedAt.UTC())
	switch {
	case err == nil:
	case database.IsForeignKeyViolation(err):
		return coursework.Grade{}, coursework.ErrSubmissionNotFound
	default:
		return coursework.Grade{}, errors.Wrap(err, "upserting grade")
	}

	var stored coursework.Grade
	q = repo.db.Rebind(`
		SELECT id, submission_id, score, feedback, teacher_id, created_at, updated_at
		FROM grades WHERE submission_id = ?`)
	if err = repo.db.GetContext(ctx, &stored, q, grade.SubmissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return coursework.Grade{}, coursework.ErrSubmissionNotFound
		}
		return coursework.Grade{}, errors.Wrap(err, "getting grade")
	}
	return stored, nil
}
