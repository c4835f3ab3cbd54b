package course

import (
	"context"
	"database/sql"
	"errors"
)

const maxPageSize = 200

// SQLStore persists courses and enrollments.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,title,description,category,difficulty,instructor_id,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.Title, c.Description, c.Category, c.Difficulty, c.InstructorID, c.CreatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, `SELECT id,title,description,category,difficulty,instructor_id,created_at
		FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty, &c.InstructorID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

func (s *SQLStore) Update(ctx context.Context, c Course) error {
	res, err := s.db.ExecContext(ctx, `UPDATE courses
		SET title=$1, description=$2, category=$3, difficulty=$4 WHERE id=$5`,
		c.Title, c.Description, c.Category, c.Difficulty, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns courses matching the optional substring query, newest first.
func (s *SQLStore) List(ctx context.Context, q string, limit, offset int) ([]Course, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	var (
		rows *sql.Rows
		err  error
	)
	if q != "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id,title,description,category,difficulty,instructor_id,created_at
			FROM courses WHERE LOWER(title) LIKE '%' || LOWER($1) || '%'
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`, q, limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id,title,description,category,difficulty,instructor_id,created_at
			FROM courses ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty, &c.InstructorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) Enroll(ctx context.Context, courseID, userID string, enrolledAt int64) error {
	if _, err := s.Get(ctx, courseID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO enrollments (course_id,user_id,enrolled_at)
		VALUES ($1,$2,$3) ON CONFLICT (course_id,user_id) DO NOTHING`,
		courseID, userID, enrolledAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyEnrolled
	}
	return nil
}

func (s *SQLStore) Unenroll(ctx context.Context, courseID, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM enrollments WHERE course_id=$1 AND user_id=$2`, courseID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotEnrolled
	}
	return nil
}

func (s *SQLStore) ListEnrollments(ctx context.Context, courseID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT course_id,user_id,enrolled_at
		FROM enrollments WHERE course_id=$1 ORDER BY enrolled_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Enrollment{}
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.CourseID, &e.UserID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListUserEnrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT course_id,user_id,enrolled_at
		FROM enrollments WHERE user_id=$1 ORDER BY enrolled_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Enrollment{}
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.CourseID, &e.UserID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
