package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists quizzes in a relational database. The question graph and
// the graded answers travel as JSON columns; the tables themselves stay flat.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,course_id,title,description,duration_minutes,passing_score,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			duration_minutes=EXCLUDED.duration_minutes, passing_score=EXCLUDED.passing_score,
			questions_json=EXCLUDED.questions_json`,
		q.ID, q.CourseID, q.Title, q.Description, q.DurationMinutes, q.PassingScore, string(qj), q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,course_id,title,description,duration_minutes,passing_score,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListByCourse(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_id,title,description,duration_minutes,passing_score,questions_json,created_at
		FROM quizzes WHERE course_id=$1 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) error {
	var deadline sql.NullInt64
	if sub.Deadline != nil {
		deadline = sql.NullInt64{Int64: sub.Deadline.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO quiz_submissions (id,quiz_id,user_id,status,score,passed,answers_json,started_at,deadline)
		VALUES ($1,$2,$3,$4,0,0,'[]',$5,$6)`,
		sub.ID, sub.QuizID, sub.UserID, sub.Status, sub.StartedAt.Unix(), deadline)
	return err
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,status,score,passed,answers_json,started_at,deadline,submitted_at
		FROM quiz_submissions WHERE id=$1`, id)
	return scanSubmission(row)
}

// Finalize is the compare-and-swap that makes grading at-most-once: only a
// still-started row is updated, so a concurrent second pass sees zero rows
// and backs off.
func (s *SQLStore) Finalize(ctx context.Context, id, status string, score float64, passed bool, answers []Answer, submittedAt time.Time) error {
	if answers == nil {
		answers = []Answer{}
	}
	aj, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE quiz_submissions
		SET status=$1, score=$2, passed=$3, answers_json=$4, submitted_at=$5
		WHERE id=$6 AND status='started'`,
		status, score, boolToInt(passed), string(aj), submittedAt.Unix(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetSubmission(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyGraded
	}
	return nil
}

func (s *SQLStore) LatestSubmission(ctx context.Context, quizID, userID string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,status,score,passed,answers_json,started_at,deadline,submitted_at
		FROM quiz_submissions WHERE quiz_id=$1 AND user_id=$2 ORDER BY started_at DESC LIMIT 1`, quizID, userID)
	return scanSubmission(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.DurationMinutes, &q.PassingScore, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return q, nil
}

func scanSubmission(row rowScanner) (Submission, error) {
	var (
		sub         Submission
		passed      int
		ajson       string
		startedAt   int64
		deadline    sql.NullInt64
		submittedAt sql.NullInt64
	)
	err := row.Scan(&sub.ID, &sub.QuizID, &sub.UserID, &sub.Status, &sub.Score, &passed, &ajson, &startedAt, &deadline, &submittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	sub.Passed = passed != 0
	sub.StartedAt = time.Unix(startedAt, 0).UTC()
	if deadline.Valid {
		t := time.Unix(deadline.Int64, 0).UTC()
		sub.Deadline = &t
	}
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0).UTC()
		sub.SubmittedAt = &t
	}
	if err := json.Unmarshal([]byte(ajson), &sub.Answers); err != nil {
		return Submission{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return sub, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
