package grading

import "fmt"

// Answer pairs a question id with the learner's raw answer, as received from
// the route layer.
type Answer struct {
	QuestionID string
	Raw        string
}

// GradedAnswer is one Answer with its grading outcome attached.
type GradedAnswer struct {
	QuestionID string
	Raw        string
	Result
}

// Summary is the aggregate outcome of one grading pass over a submission.
type Summary struct {
	Earned      float64
	MaxPossible float64
	Score       float64 // Earned / MaxPossible, 0 when MaxPossible is 0
	Passed      bool
}

// GradeSubmission grades every submitted answer independently and aggregates
// the result. Unanswered questions contribute nothing earned but still count
// toward the maximum, so a partial submission cannot inflate its score. Any
// answer referencing a question outside questions aborts the whole pass: with
// an unknown question in the mix the denominator would be wrong, so no
// partial credit is produced.
func (g *Grader) GradeSubmission(questions []Question, answers []Answer, passingScore float64) ([]GradedAnswer, Summary, error) {
	byID := make(map[string]Question, len(questions))
	var max float64
	for _, q := range questions {
		byID[q.ID] = q
		max += q.Points
	}

	graded := make([]GradedAnswer, 0, len(answers))
	seen := make(map[string]bool, len(answers))
	var earned float64
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return nil, Summary{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, a.QuestionID)
		}
		if seen[a.QuestionID] {
			return nil, Summary{}, fmt.Errorf("%w: %s", ErrDuplicateAnswer, a.QuestionID)
		}
		seen[a.QuestionID] = true

		res, err := g.Grade(q, a.Raw)
		if err != nil {
			return nil, Summary{}, err
		}
		earned += res.PointsAwarded
		graded = append(graded, GradedAnswer{QuestionID: a.QuestionID, Raw: a.Raw, Result: res})
	}

	sum := Summary{Earned: earned, MaxPossible: max}
	if max > 0 {
		sum.Score = earned / max
	}
	sum.Passed = sum.Score >= passingScore
	return graded, sum, nil
}
