package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swahili-learn/backend/internal/auth"
	"github.com/swahili-learn/backend/internal/grading"
	"github.com/swahili-learn/backend/internal/lesson"
	"github.com/swahili-learn/backend/internal/quiz"
	"github.com/swahili-learn/backend/internal/rbac"
	"github.com/swahili-learn/backend/internal/user"
	"github.com/swahili-learn/backend/internal/visibility"
)

func jsonDecode(rec *httptest.ResponseRecorder, dst any) error {
	return json.NewDecoder(rec.Body).Decode(dst)
}

// memLessonStore is just enough of lesson.Store for handler tests.
type memLessonStore struct {
	mu      sync.Mutex
	lessons map[string]lesson.Lesson
}

func newMemLessonStore() *memLessonStore {
	return &memLessonStore{lessons: map[string]lesson.Lesson{}}
}

func (m *memLessonStore) Put(_ context.Context, l lesson.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[l.ID] = l
	return nil
}

func (m *memLessonStore) Get(_ context.Context, id string) (lesson.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	return l, nil
}

func (m *memLessonStore) Update(_ context.Context, l lesson.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessons[l.ID]; !ok {
		return lesson.ErrNotFound
	}
	m.lessons[l.ID] = l
	return nil
}

func (m *memLessonStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessons[id]; !ok {
		return lesson.ErrNotFound
	}
	delete(m.lessons, id)
	return nil
}

func (m *memLessonStore) ListByCourse(_ context.Context, courseID string) ([]lesson.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []lesson.Lesson
	for _, l := range m.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memLessonStore) UpdateVisibility(_ context.Context, id string, r visibility.Rule, updatedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return lesson.ErrNotFound
	}
	l.Visibility = r
	l.UpdatedAt = updatedAt
	m.lessons[id] = l
	return nil
}

// asRole stamps an authenticated identity into the request context, standing
// in for the JWT middleware.
func asRole(role, sub string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := rbac.WithRole(auth.WithSubject(r.Context(), sub), role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newLessonRouter(t *testing.T, role string) (*chi.Mux, *lesson.Service) {
	t.Helper()
	svc := lesson.NewService(newMemLessonStore())
	r := chi.NewRouter()
	r.Use(asRole(role, "user-1"))
	r.Post("/courses/{courseID}/lessons", CreateLessonHandler(svc))
	r.Get("/courses/{courseID}/lessons/accessible", AccessibleLessonsHandler(svc))
	r.Patch("/lessons/{lessonID}/visibility", PatchVisibilityHandler(svc))
	return r, svc
}

func TestPatchVisibilityRoundTrip(t *testing.T) {
	r, _ := newLessonRouter(t, user.RoleInstructor)

	body := `{"title":"Greetings","content_type":"text","position":1}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/courses/c1/lessons", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created lesson.Lesson
	require.NoError(t, jsonDecode(rec, &created))
	assert.True(t, created.Visibility.Visible)

	patch := `{"is_visible":false,"required_roles":["instructor"]}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("PATCH", "/lessons/"+created.ID+"/visibility", strings.NewReader(patch)))
	require.Equal(t, http.StatusOK, rec.Code)
	var patched lesson.Lesson
	require.NoError(t, jsonDecode(rec, &patched))
	assert.False(t, patched.Visibility.Visible)
	assert.Equal(t, []string{"instructor"}, patched.Visibility.Roles)
}

func TestPatchVisibilityRejectsInvertedWindow(t *testing.T) {
	r, _ := newLessonRouter(t, user.RoleInstructor)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/courses/c1/lessons",
		strings.NewReader(`{"title":"Greetings","content_type":"text"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created lesson.Lesson
	require.NoError(t, jsonDecode(rec, &created))

	patch := `{"visibility_start":"2025-04-02T00:00:00Z","visibility_end":"2025-04-01T00:00:00Z"}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("PATCH", "/lessons/"+created.ID+"/visibility", strings.NewReader(patch)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAccessibleLessonsUsesCallerRole(t *testing.T) {
	r, svc := newLessonRouter(t, user.RoleStudent)
	ctx := context.Background()

	open, err := svc.Create(ctx, lesson.Lesson{CourseID: "c1", Title: "Open", ContentType: lesson.ContentText, Position: 1})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, lesson.Lesson{CourseID: "c1", Title: "Hidden", ContentType: lesson.ContentText, Position: 2})
	require.NoError(t, err)
	off := false
	_, err = svc.UpdateVisibility(ctx, hidden.ID, visibility.Patch{Visible: &off})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/courses/c1/lessons/accessible", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []lesson.Lesson
	require.NoError(t, jsonDecode(rec, &got))
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func newQuizRouter(t *testing.T) (*chi.Mux, *quiz.Service) {
	t.Helper()
	svc := quiz.NewService(quiz.NewInMemoryStore(), grading.NewGrader())
	checker := rbac.NewChecker(nil)
	r := chi.NewRouter()
	r.Use(asRole(user.RoleStudent, "user-1"))
	r.Get("/quizzes/{quizID}", GetQuizHandler(svc, checker))
	r.Post("/quizzes/{quizID}/start", StartQuizHandler(svc))
	r.Post("/submissions/{submissionID}", SubmitHandler(svc))
	r.Get("/quizzes/{quizID}/result", QuizResultHandler(svc))
	return r, svc
}

func TestQuizFlowSubmitOnce(t *testing.T) {
	r, svc := newQuizRouter(t)

	created, err := svc.Create(context.Background(), quiz.Quiz{
		CourseID:     "c1",
		Title:        "Greetings",
		PassingScore: 0.5,
		Questions: []quiz.Question{{
			Type:   grading.TypeMultipleChoice,
			Prompt: "Hello?",
			Points: 1,
			Choices: []quiz.Choice{
				{Text: "Jambo", Correct: true},
				{Text: "Kwaheri"},
			},
		}},
	})
	require.NoError(t, err)

	// Learners never see the answer key.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/quizzes/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "is_correct")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/quizzes/"+created.ID+"/start", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var sub quiz.Submission
	require.NoError(t, jsonDecode(rec, &sub))

	body := `{"answers":[{"question_id":"` + created.Questions[0].ID + `","answer":"Jambo"}]}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/submissions/"+sub.ID, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var graded quiz.Submission
	require.NoError(t, jsonDecode(rec, &graded))
	assert.Equal(t, quiz.StatusGraded, graded.Status)
	assert.Equal(t, 1.0, graded.Score)
	assert.True(t, graded.Passed)

	// A second submit must not re-grade.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/submissions/"+sub.ID, strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/quizzes/"+created.ID+"/result", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var result quiz.Submission
	require.NoError(t, jsonDecode(rec, &result))
	assert.Equal(t, graded.ID, result.ID)
}
