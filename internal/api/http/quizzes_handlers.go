package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swahili-learn/backend/internal/auth"
	"github.com/swahili-learn/backend/internal/grading"
	"github.com/swahili-learn/backend/internal/quiz"
	"github.com/swahili-learn/backend/internal/rbac"
)

type choiceReq struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"is_correct"`
}

type questionReq struct {
	Type      string      `json:"type" validate:"required,oneof=multiple_choice true_false short_answer"`
	Prompt    string      `json:"prompt" validate:"required"`
	Points    float64     `json:"points" validate:"gt=0"`
	Choices   []choiceReq `json:"choices" validate:"dive"`
	Keywords  []string    `json:"keywords"`
	MinLength int         `json:"min_length" validate:"gte=0"`
	MaxLength int         `json:"max_length" validate:"gte=0"`
}

type quizReq struct {
	Title           string        `json:"title" validate:"required,min=1,max=200"`
	Description     string        `json:"description"`
	DurationMinutes int           `json:"duration_minutes" validate:"gte=0"`
	PassingScore    float64       `json:"passing_score" validate:"gte=0,lte=1"`
	Questions       []questionReq `json:"questions" validate:"required,min=1,dive"`
}

// POST /courses/{courseID}/quizzes
func CreateQuizHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quizReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		q := quiz.Quiz{
			CourseID:        chi.URLParam(r, "courseID"),
			Title:           req.Title,
			Description:     req.Description,
			DurationMinutes: req.DurationMinutes,
			PassingScore:    req.PassingScore,
		}
		for _, qr := range req.Questions {
			qu := quiz.Question{
				Type:      qr.Type,
				Prompt:    qr.Prompt,
				Points:    qr.Points,
				Keywords:  qr.Keywords,
				MinLength: qr.MinLength,
				MaxLength: qr.MaxLength,
			}
			for _, cr := range qr.Choices {
				qu.Choices = append(qu.Choices, quiz.Choice{Text: cr.Text, Correct: cr.Correct})
			}
			q.Questions = append(q.Questions, qu)
		}
		created, err := quizzes.Create(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /courses/{courseID}/quizzes
// Answer keys are stripped unless the caller may manage quizzes.
func ListQuizzesHandler(quizzes *quiz.Service, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := quizzes.ListByCourse(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !checker.Has(rbac.RoleFromContext(r.Context()), "quizzes:manage") {
			for i := range list {
				list[i] = list[i].Sanitized()
			}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(quizzes *quiz.Service, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := quizzes.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !checker.Has(rbac.RoleFromContext(r.Context()), "quizzes:manage") {
			q = q.Sanitized()
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DELETE /quizzes/{quizID}
func DeleteQuizHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := quizzes.Delete(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /quizzes/{quizID}/start
func StartQuizHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := quizzes.Start(r.Context(), chi.URLParam(r, "quizID"), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

type submitReq struct {
	Answers []struct {
		QuestionID string `json:"question_id" validate:"required"`
		Answer     string `json:"answer"`
	} `json:"answers"`
}

// POST /submissions/{submissionID}
// One shot: the submission is graded or rejected and never re-opened.
func SubmitHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		answers := make([]grading.Answer, 0, len(req.Answers))
		for _, a := range req.Answers {
			answers = append(answers, grading.Answer{QuestionID: a.QuestionID, Raw: a.Answer})
		}
		sub, err := quizzes.Submit(r.Context(), chi.URLParam(r, "submissionID"), answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// GET /quizzes/{quizID}/result
func QuizResultHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := quizzes.LatestResult(r.Context(), chi.URLParam(r, "quizID"), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}
