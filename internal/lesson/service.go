package lesson

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swahili-learn/backend/internal/visibility"
)

// Store persists lessons. ListByCourse returns lessons in course order
// (ascending position).
type Store interface {
	Put(ctx context.Context, l Lesson) error
	Get(ctx context.Context, id string) (Lesson, error)
	Update(ctx context.Context, l Lesson) error
	Delete(ctx context.Context, id string) error
	ListByCourse(ctx context.Context, courseID string) ([]Lesson, error)
	// UpdateVisibility persists only the visibility fields of the lesson.
	UpdateVisibility(ctx context.Context, id string, r visibility.Rule, updatedAt int64) error
}

// Service owns the lesson lifecycle and delegates access decisions to the
// visibility engine.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create persists a new lesson with the default visibility rule.
func (s *Service) Create(ctx context.Context, l Lesson) (Lesson, error) {
	if !validContentType(l.ContentType) {
		return Lesson{}, fmt.Errorf("%w: %q", ErrInvalidContent, l.ContentType)
	}
	l.ID = uuid.NewString()
	l.Visibility = visibility.Default()
	l.CreatedAt = s.now().Unix()
	l.UpdatedAt = l.CreatedAt
	if err := s.store.Put(ctx, l); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (Lesson, error) {
	return s.store.Get(ctx, id)
}

// Update replaces the lesson's content fields; the visibility rule is only
// mutated through UpdateVisibility.
func (s *Service) Update(ctx context.Context, id string, upd Lesson) (Lesson, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if !validContentType(upd.ContentType) {
		return Lesson{}, fmt.Errorf("%w: %q", ErrInvalidContent, upd.ContentType)
	}
	cur.Title = upd.Title
	cur.Description = upd.Description
	cur.ContentType = upd.ContentType
	cur.ContentURL = upd.ContentURL
	cur.Position = upd.Position
	cur.UpdatedAt = s.now().Unix()
	if err := s.store.Update(ctx, cur); err != nil {
		return Lesson{}, err
	}
	return cur, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) ListByCourse(ctx context.Context, courseID string) ([]Lesson, error) {
	return s.store.ListByCourse(ctx, courseID)
}

// UpdateVisibility validates and applies a partial visibility update. A
// failed validation persists nothing and returns the lesson unchanged to the
// caller's view.
func (s *Service) UpdateVisibility(ctx context.Context, id string, p visibility.Patch) (Lesson, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	rule, err := visibility.Apply(l.Visibility, p)
	if err != nil {
		return Lesson{}, err
	}
	updatedAt := s.now().Unix()
	if err := s.store.UpdateVisibility(ctx, id, rule, updatedAt); err != nil {
		return Lesson{}, err
	}
	l.Visibility = rule
	l.UpdatedAt = updatedAt
	return l, nil
}

// Accessible returns the course's lessons open to role right now, in course
// order. Pagination is the caller's concern.
func (s *Service) Accessible(ctx context.Context, courseID, role string) ([]Lesson, error) {
	all, err := s.store.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return visibility.FilterAccessible(all, func(l Lesson) visibility.Rule { return l.Visibility }, role, s.now()), nil
}
