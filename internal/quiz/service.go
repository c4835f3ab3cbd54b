package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swahili-learn/backend/internal/grading"
)

// Service coordinates the quiz lifecycle: authoring, timed attempts and the
// single grading pass per submission. All clock reads go through the injected
// now func so tests can pin time.
type Service struct {
	store  Store
	grader *grading.Grader
	now    func() time.Time
}

func NewService(store Store, grader *grading.Grader) *Service {
	return &Service{store: store, grader: grader, now: time.Now}
}

const defaultPassingScore = 0.7

// Create assigns ids throughout the question graph and persists the quiz.
func (s *Service) Create(ctx context.Context, q Quiz) (Quiz, error) {
	q.ID = uuid.NewString()
	q.CreatedAt = s.now().Unix()
	if q.PassingScore == 0 {
		q.PassingScore = defaultPassingScore
	}
	if q.PassingScore < 0 || q.PassingScore > 1 {
		return Quiz{}, fmt.Errorf("%w: %v", ErrInvalidPassingScore, q.PassingScore)
	}
	for i := range q.Questions {
		q.Questions[i].ID = uuid.NewString()
		for j := range q.Questions[i].Choices {
			q.Questions[i].Choices[j].ID = uuid.NewString()
		}
	}
	if err := s.store.PutQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// Get returns the quiz with its full answer key. Callers serving learners
// must use Quiz.Sanitized.
func (s *Service) Get(ctx context.Context, id string) (Quiz, error) {
	return s.store.GetQuiz(ctx, id)
}

func (s *Service) ListByCourse(ctx context.Context, courseID string) ([]Quiz, error) {
	return s.store.ListByCourse(ctx, courseID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteQuiz(ctx, id)
}

// Start creates a new started submission. For timed quizzes the deadline is
// stamped here; the later grading pass compares against it, never against a
// fresh duration.
func (s *Service) Start(ctx context.Context, quizID, userID string) (Submission, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{
		ID:        uuid.NewString(),
		QuizID:    q.ID,
		UserID:    userID,
		Status:    StatusStarted,
		StartedAt: s.now(),
	}
	if q.DurationMinutes > 0 {
		d := sub.StartedAt.Add(time.Duration(q.DurationMinutes) * time.Minute)
		sub.Deadline = &d
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Submit grades the answers and commits the result exactly once.
//
// State machine: started -> (deadline check) -> graded | rejected. A late
// submission is rejected with ErrQuizTimeout and no answers are persisted; a
// grading fault (unknown question, misconfigured choice) leaves the
// submission started and commits nothing. Re-submission means starting a new
// submission, never regrading this one.
func (s *Service) Submit(ctx context.Context, submissionID string, answers []grading.Answer) (Submission, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.Status != StatusStarted {
		return Submission{}, ErrAlreadyGraded
	}

	now := s.now()
	if sub.Deadline != nil && now.After(*sub.Deadline) {
		if err := s.store.Finalize(ctx, sub.ID, StatusRejected, 0, false, nil, now); err != nil {
			return Submission{}, err
		}
		return Submission{}, ErrQuizTimeout
	}

	q, err := s.store.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		return Submission{}, err
	}

	graded, summary, err := s.grader.GradeSubmission(q.gradingQuestions(), answers, q.PassingScore)
	if err != nil {
		return Submission{}, err
	}

	records := make([]Answer, len(graded))
	for i, ga := range graded {
		records[i] = Answer{
			QuestionID:    ga.QuestionID,
			Raw:           ga.Raw,
			Correct:       ga.Correct,
			PointsAwarded: ga.PointsAwarded,
			KeywordScore:  ga.KeywordScore,
			LengthScore:   ga.LengthScore,
		}
	}
	if err := s.store.Finalize(ctx, sub.ID, StatusGraded, summary.Score, summary.Passed, records, now); err != nil {
		return Submission{}, err
	}
	return s.store.GetSubmission(ctx, sub.ID)
}

// LatestResult returns the user's most recent submission of the quiz.
func (s *Service) LatestResult(ctx context.Context, quizID, userID string) (Submission, error) {
	return s.store.LatestSubmission(ctx, quizID, userID)
}
