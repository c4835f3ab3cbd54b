package quiz

import (
	"context"
	"sync"
	"time"
)

// Store persists quizzes and submissions. Finalize is the only mutation of a
// submission after creation and must be conditional on the started status, so
// two concurrent grading passes cannot both commit.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListByCourse(ctx context.Context, courseID string) ([]Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error

	CreateSubmission(ctx context.Context, s Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	// Finalize moves a started submission to status, writing score, passed
	// and the answer records in one step. Returns ErrAlreadyGraded if the
	// submission has already left the started state.
	Finalize(ctx context.Context, id, status string, score float64, passed bool, answers []Answer, submittedAt time.Time) error
	// LatestSubmission returns the most recently started submission of
	// quizID by userID.
	LatestSubmission(ctx context.Context, quizID, userID string) (Submission, error)
}

type memoryStore struct {
	mu          sync.RWMutex
	quizzes     map[string]Quiz
	submissions map[string]Submission
}

// NewInMemoryStore returns a Store backed by process memory, used in tests
// and offline experiments.
func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:     map[string]Quiz{},
		submissions: map[string]Submission{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) ListByCourse(_ context.Context, courseID string) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Quiz{}
	for _, q := range m.quizzes {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(m.quizzes, id)
	for sid, s := range m.submissions {
		if s.QuizID == id {
			delete(m.submissions, sid)
		}
	}
	return nil
}

func (m *memoryStore) CreateSubmission(_ context.Context, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[s.QuizID]; !ok {
		return ErrNotFound
	}
	m.submissions[s.ID] = s
	return nil
}

func (m *memoryStore) GetSubmission(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return s, nil
}

func (m *memoryStore) Finalize(_ context.Context, id, status string, score float64, passed bool, answers []Answer, submittedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return ErrSubmissionNotFound
	}
	if s.Status != StatusStarted {
		return ErrAlreadyGraded
	}
	s.Status = status
	s.Score = score
	s.Passed = passed
	s.Answers = answers
	s.SubmittedAt = &submittedAt
	m.submissions[id] = s
	return nil
}

func (m *memoryStore) LatestSubmission(_ context.Context, quizID, userID string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest Submission
	found := false
	for _, s := range m.submissions {
		if s.QuizID != quizID || s.UserID != userID {
			continue
		}
		if !found || s.StartedAt.After(latest.StartedAt) {
			latest = s
			found = true
		}
	}
	if !found {
		return Submission{}, ErrSubmissionNotFound
	}
	return latest, nil
}
