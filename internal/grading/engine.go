package grading

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Question types understood by the grader.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

var (
	// ErrUnsupportedType is returned for a question type with no strategy.
	ErrUnsupportedType = errors.New("unsupported question type")
	// ErrNoCorrectChoice is returned when a choice question has no choice
	// flagged correct. A misconfigured question must not silently zero a
	// learner's score.
	ErrNoCorrectChoice = errors.New("question has no correct choice")
	// ErrUnknownQuestion is returned when a submitted answer references a
	// question that does not belong to the quiz.
	ErrUnknownQuestion = errors.New("answer references unknown question")
	// ErrDuplicateAnswer is returned when a submission answers the same
	// question more than once.
	ErrDuplicateAnswer = errors.New("duplicate answer for question")
)

// Choice is a minimal view of a question choice needed for grading.
type Choice struct {
	ID      string
	Text    string
	Correct bool
}

// Question is a minimal view of a quiz question needed for grading. Keywords
// and the length bounds apply to short answers only; zero bounds mean
// unbounded on that side.
type Question struct {
	ID        string
	Type      string
	Points    float64
	Choices   []Choice
	Keywords  []string
	MinLength int
	MaxLength int
}

// Result is the outcome of grading a single submitted answer. KeywordScore
// and LengthScore are the short-answer components (0 for other types); their
// sum drives both correctness and the awarded points.
type Result struct {
	Correct       bool
	PointsAwarded float64
	KeywordScore  float64
	LengthScore   float64
}

// Strategy grades one answer to one question.
type Strategy interface {
	Grade(q Question, answer string) (Result, error)
}

// Grader routes by question type to the correct Strategy. It is pure and
// stateless; independent submissions may be graded concurrently.
type Grader struct {
	strategies map[string]Strategy
}

// NewGrader installs the built-in strategies.
func NewGrader() *Grader {
	return &Grader{
		strategies: map[string]Strategy{
			TypeMultipleChoice: choiceStrategy{},
			TypeTrueFalse:      trueFalseStrategy{},
			TypeShortAnswer:    shortAnswerStrategy{},
		},
	}
}

// Grade grades a single raw answer against q. Calling it twice with the same
// inputs yields the same result.
func (g *Grader) Grade(q Question, answer string) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedType, q.Type)
	}
	return s.Grade(q, answer)
}

// --- strategies ---

type choiceStrategy struct{}

func (choiceStrategy) Grade(q Question, answer string) (Result, error) {
	correct, err := correctChoice(q)
	if err != nil {
		return Result{}, err
	}
	// Historic clients sent either the choice id or its text.
	if answer == correct.ID || answer == correct.Text {
		return Result{Correct: true, PointsAwarded: q.Points}, nil
	}
	return Result{}, nil
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Grade(q Question, answer string) (Result, error) {
	key := "true"
	if len(q.Choices) > 0 {
		correct, err := correctChoice(q)
		if err != nil {
			return Result{}, err
		}
		key = correct.Text
	}
	if strings.EqualFold(strings.TrimSpace(answer), key) {
		return Result{Correct: true, PointsAwarded: q.Points}, nil
	}
	return Result{}, nil
}

// correctChoice returns the first choice flagged correct, in choice order.
func correctChoice(q Question) (Choice, error) {
	for _, c := range q.Choices {
		if c.Correct {
			return c, nil
		}
	}
	return Choice{}, fmt.Errorf("%w: %s", ErrNoCorrectChoice, q.ID)
}

const (
	keywordWeight = 0.6
	lengthWeight  = 0.4
	// correctThreshold is the component-score sum at which a short answer
	// counts as correct.
	correctThreshold = 0.5
)

type shortAnswerStrategy struct{}

func (shortAnswerStrategy) Grade(q Question, answer string) (Result, error) {
	trimmed := strings.TrimSpace(answer)
	lower := strings.ToLower(trimmed)

	// Keyword component: fraction of keywords present as substrings,
	// case-insensitive. An empty keyword list contributes zero; the weight
	// is not redistributed.
	var keywordScore float64
	if len(q.Keywords) > 0 {
		hits := 0
		for _, kw := range q.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				hits++
			}
		}
		keywordScore = keywordWeight * float64(hits) / float64(len(q.Keywords))
	}

	// Length component: flat weight when the trimmed answer length sits
	// inside the configured bounds.
	var lengthScore float64
	n := utf8.RuneCountInString(trimmed)
	if (q.MinLength == 0 || n >= q.MinLength) && (q.MaxLength == 0 || n <= q.MaxLength) {
		lengthScore = lengthWeight
	}

	total := keywordScore + lengthScore
	return Result{
		Correct:       total >= correctThreshold,
		PointsAwarded: total * q.Points,
		KeywordScore:  keywordScore,
		LengthScore:   lengthScore,
	}, nil
}
