package lesson

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/swahili-learn/backend/internal/visibility"
)

// SQLStore persists lessons with the visibility rule flattened into columns;
// the role list travels as a JSON array.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, l Lesson) error {
	roles, start, end, err := packRule(l.Visibility)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO lessons
		(id,course_id,title,description,content_type,content_url,position,is_visible,visibility_start,visibility_end,required_roles_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		l.ID, l.CourseID, l.Title, l.Description, l.ContentType, l.ContentURL, l.Position,
		boolToInt(l.Visibility.Visible), start, end, roles, l.CreatedAt, l.UpdatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Lesson, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,course_id,title,description,content_type,content_url,position,is_visible,visibility_start,visibility_end,required_roles_json,created_at,updated_at
		FROM lessons WHERE id=$1`, id)
	return scanLesson(row)
}

func (s *SQLStore) Update(ctx context.Context, l Lesson) error {
	res, err := s.db.ExecContext(ctx, `UPDATE lessons
		SET title=$1, description=$2, content_type=$3, content_url=$4, position=$5, updated_at=$6
		WHERE id=$7`,
		l.Title, l.Description, l.ContentType, l.ContentURL, l.Position, l.UpdatedAt, l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListByCourse(ctx context.Context, courseID string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_id,title,description,content_type,content_url,position,is_visible,visibility_start,visibility_end,required_roles_json,created_at,updated_at
		FROM lessons WHERE course_id=$1 ORDER BY position, created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateVisibility(ctx context.Context, id string, r visibility.Rule, updatedAt int64) error {
	roles, start, end, err := packRule(r)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE lessons
		SET is_visible=$1, visibility_start=$2, visibility_end=$3, required_roles_json=$4, updated_at=$5
		WHERE id=$6`,
		boolToInt(r.Visible), start, end, roles, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func packRule(r visibility.Rule) (roles string, start, end sql.NullInt64, err error) {
	b, err := json.Marshal(r.Roles)
	if err != nil {
		return "", start, end, fmt.Errorf("marshal roles: %w", err)
	}
	if r.Start != nil {
		start = sql.NullInt64{Int64: r.Start.Unix(), Valid: true}
	}
	if r.End != nil {
		end = sql.NullInt64{Int64: r.End.Unix(), Valid: true}
	}
	return string(b), start, end, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (Lesson, error) {
	var (
		l          Lesson
		visible    int
		start, end sql.NullInt64
		roles      string
	)
	err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description, &l.ContentType, &l.ContentURL, &l.Position,
		&visible, &start, &end, &roles, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, ErrNotFound
		}
		return Lesson{}, err
	}
	l.Visibility.Visible = visible != 0
	if start.Valid {
		t := time.Unix(start.Int64, 0).UTC()
		l.Visibility.Start = &t
	}
	if end.Valid {
		t := time.Unix(end.Int64, 0).UTC()
		l.Visibility.End = &t
	}
	if err := json.Unmarshal([]byte(roles), &l.Visibility.Roles); err != nil {
		return Lesson{}, fmt.Errorf("unmarshal roles: %w", err)
	}
	return l, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
