package lesson

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swahili-learn/backend/internal/visibility"
)

// fakeStore is an in-memory Store recording the calls the service makes.
type fakeStore struct {
	lessons          map[string]Lesson
	order            []string
	visibilityWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{lessons: map[string]Lesson{}}
}

func (f *fakeStore) Put(_ context.Context, l Lesson) error {
	f.lessons[l.ID] = l
	f.order = append(f.order, l.ID)
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return Lesson{}, ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) Update(_ context.Context, l Lesson) error {
	if _, ok := f.lessons[l.ID]; !ok {
		return ErrNotFound
	}
	f.lessons[l.ID] = l
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.lessons[id]; !ok {
		return ErrNotFound
	}
	delete(f.lessons, id)
	return nil
}

func (f *fakeStore) ListByCourse(_ context.Context, courseID string) ([]Lesson, error) {
	out := []Lesson{}
	for _, id := range f.order {
		if l, ok := f.lessons[id]; ok && l.CourseID == courseID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateVisibility(_ context.Context, id string, r visibility.Rule, updatedAt int64) error {
	l, ok := f.lessons[id]
	if !ok {
		return ErrNotFound
	}
	l.Visibility = r
	l.UpdatedAt = updatedAt
	f.lessons[id] = l
	f.visibilityWrites++
	return nil
}

func newTestService(store *fakeStore, now time.Time) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateAppliesDefaultRule(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	l, err := svc.Create(context.Background(), Lesson{CourseID: "c1", Title: "Intro", ContentType: ContentText})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.True(t, l.Visibility.Visible)
	assert.Equal(t, []string{"student"}, l.Visibility.Roles)
	assert.Nil(t, l.Visibility.Start)
	assert.Nil(t, l.Visibility.End)
}

func TestCreateRejectsUnknownContentType(t *testing.T) {
	svc := newTestService(newFakeStore(), time.Now())
	_, err := svc.Create(context.Background(), Lesson{CourseID: "c1", Title: "Intro", ContentType: "hologram"})
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestUpdateVisibility(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, now)
	ctx := context.Background()

	l, err := svc.Create(ctx, Lesson{CourseID: "c1", Title: "Intro", ContentType: ContentText})
	require.NoError(t, err)

	t.Run("valid patch persists", func(t *testing.T) {
		start := now.Add(time.Hour)
		end := now.Add(2 * time.Hour)
		got, err := svc.UpdateVisibility(ctx, l.ID, visibility.Patch{Start: &start, End: &end, Roles: []string{"student", "instructor"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"student", "instructor"}, got.Visibility.Roles)
		require.NotNil(t, got.Visibility.Start)
		assert.Equal(t, 1, store.visibilityWrites)
	})

	t.Run("invalid patch writes nothing", func(t *testing.T) {
		before := store.lessons[l.ID].Visibility
		start := now.Add(3 * time.Hour)
		end := now.Add(time.Hour)
		_, err := svc.UpdateVisibility(ctx, l.ID, visibility.Patch{Start: &start, End: &end})
		assert.ErrorIs(t, err, visibility.ErrInvalidRange)
		assert.Equal(t, before, store.lessons[l.ID].Visibility)
		assert.Equal(t, 1, store.visibilityWrites)
	})

	t.Run("empty roles writes nothing", func(t *testing.T) {
		_, err := svc.UpdateVisibility(ctx, l.ID, visibility.Patch{Roles: []string{}})
		assert.ErrorIs(t, err, visibility.ErrEmptyRoles)
		assert.Equal(t, 1, store.visibilityWrites)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		_, err := svc.UpdateVisibility(ctx, "ghost", visibility.Patch{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAccessibleFiltersAndPreservesOrder(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, now)
	ctx := context.Background()

	first, err := svc.Create(ctx, Lesson{CourseID: "c1", Title: "One", ContentType: ContentText, Position: 1})
	require.NoError(t, err)
	second, err := svc.Create(ctx, Lesson{CourseID: "c1", Title: "Two", ContentType: ContentVideo, Position: 2})
	require.NoError(t, err)
	third, err := svc.Create(ctx, Lesson{CourseID: "c1", Title: "Three", ContentType: ContentText, Position: 3})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Lesson{CourseID: "other", Title: "Elsewhere", ContentType: ContentText})
	require.NoError(t, err)

	// hide the second, restrict the third to instructors
	hidden := false
	_, err = svc.UpdateVisibility(ctx, second.ID, visibility.Patch{Visible: &hidden})
	require.NoError(t, err)
	_, err = svc.UpdateVisibility(ctx, third.ID, visibility.Patch{Roles: []string{"instructor"}})
	require.NoError(t, err)

	got, err := svc.Accessible(ctx, "c1", "student")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)

	gotInstructor, err := svc.Accessible(ctx, "c1", "instructor")
	require.NoError(t, err)
	require.Len(t, gotInstructor, 1)
	assert.Equal(t, third.ID, gotInstructor[0].ID)
}
