package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/swahili-learn/backend/internal/course"
	"github.com/swahili-learn/backend/internal/grading"
	"github.com/swahili-learn/backend/internal/lesson"
	"github.com/swahili-learn/backend/internal/quiz"
	"github.com/swahili-learn/backend/internal/user"
	"github.com/swahili-learn/backend/internal/visibility"
)

// Handlers only; routes are mounted in cmd/gateway.

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain sentinels onto HTTP statuses. Unrecognized errors are
// reported as internal without leaking their text.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, course.ErrNotFound),
		errors.Is(err, lesson.ErrNotFound),
		errors.Is(err, quiz.ErrNotFound),
		errors.Is(err, quiz.ErrSubmissionNotFound),
		errors.Is(err, user.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrQuizTimeout),
		errors.Is(err, quiz.ErrAlreadyGraded),
		errors.Is(err, course.ErrAlreadyEnrolled),
		errors.Is(err, user.ErrExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, visibility.ErrInvalidRange),
		errors.Is(err, visibility.ErrEmptyRoles),
		errors.Is(err, grading.ErrUnknownQuestion),
		errors.Is(err, grading.ErrDuplicateAnswer),
		errors.Is(err, grading.ErrNoCorrectChoice),
		errors.Is(err, grading.ErrUnsupportedType),
		errors.Is(err, course.ErrNotEnrolled),
		errors.Is(err, lesson.ErrInvalidContent),
		errors.Is(err, quiz.ErrInvalidPassingScore):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}
