package quiz

import (
	"errors"
	"time"

	"github.com/swahili-learn/backend/internal/grading"
)

var (
	ErrNotFound = errors.New("quiz not found")
	// ErrSubmissionNotFound distinguishes a missing submission from a
	// missing quiz at the API boundary.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrQuizTimeout is returned when grading is attempted after a timed
	// quiz's deadline. The submission is rejected, never partially scored.
	ErrQuizTimeout = errors.New("quiz time has expired")
	// ErrAlreadyGraded guards the write-once score: a submission leaves the
	// started state exactly once.
	ErrAlreadyGraded = errors.New("submission already graded")
	// ErrInvalidPassingScore rejects quizzes whose threshold falls outside
	// the unit interval.
	ErrInvalidPassingScore = errors.New("passing score outside [0,1]")
)

// Submission states. A submission is Started on creation and moves to exactly
// one of Graded or Rejected.
const (
	StatusStarted  = "started"
	StatusGraded   = "graded"
	StatusRejected = "rejected"
)

type Choice struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"is_correct,omitempty"`
}

type Question struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"` // multiple_choice, true_false, short_answer
	Prompt  string   `json:"prompt"`
	Points  float64  `json:"points"`
	Choices []Choice `json:"choices,omitempty"`

	// Short-answer grading criteria. Zero length bounds are unbounded.
	Keywords  []string `json:"keywords,omitempty"`
	MinLength int      `json:"min_length,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
}

// Quiz owns its questions and their choices; deleting a quiz removes the
// whole graph.
type Quiz struct {
	ID              string     `json:"id"`
	CourseID        string     `json:"course_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"` // 0 = untimed
	PassingScore    float64    `json:"passing_score"`
	Questions       []Question `json:"questions"`
	CreatedAt       int64      `json:"created_at,omitempty"`
}

// Answer is one graded answer inside a submission, with the component scores
// produced by the grading engine attached.
type Answer struct {
	QuestionID    string  `json:"question_id"`
	Raw           string  `json:"answer"`
	Correct       bool    `json:"is_correct"`
	PointsAwarded float64 `json:"points_awarded"`
	KeywordScore  float64 `json:"keyword_score,omitempty"`
	LengthScore   float64 `json:"length_score,omitempty"`
}

// Submission is one learner's attempt at a quiz. Score and Passed are
// write-once: they are set by the single grading pass that moves the
// submission out of the started state.
type Submission struct {
	ID          string     `json:"id"`
	QuizID      string     `json:"quiz_id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	Score       float64    `json:"score"`
	Passed      bool       `json:"passed"`
	Answers     []Answer   `json:"answers,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// Sanitized returns a copy of q safe to serve to learners: correctness flags,
// keywords and length bounds are stripped.
func (q Quiz) Sanitized() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		cp := qu
		cp.Keywords = nil
		cp.MinLength = 0
		cp.MaxLength = 0
		cp.Choices = make([]Choice, len(qu.Choices))
		for j, c := range qu.Choices {
			c.Correct = false
			cp.Choices[j] = c
		}
		out.Questions[i] = cp
	}
	return out
}

// gradingQuestions converts the quiz's question graph into the grading
// engine's view.
func (q Quiz) gradingQuestions() []grading.Question {
	out := make([]grading.Question, len(q.Questions))
	for i, qu := range q.Questions {
		gq := grading.Question{
			ID:        qu.ID,
			Type:      qu.Type,
			Points:    qu.Points,
			Keywords:  qu.Keywords,
			MinLength: qu.MinLength,
			MaxLength: qu.MaxLength,
		}
		for _, c := range qu.Choices {
			gq.Choices = append(gq.Choices, grading.Choice{ID: c.ID, Text: c.Text, Correct: c.Correct})
		}
		out[i] = gq
	}
	return out
}
