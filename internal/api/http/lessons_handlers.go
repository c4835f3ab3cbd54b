package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swahili-learn/backend/internal/lesson"
	"github.com/swahili-learn/backend/internal/rbac"
	"github.com/swahili-learn/backend/internal/user"
	"github.com/swahili-learn/backend/internal/visibility"
)

type lessonReq struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	ContentType string `json:"content_type" validate:"required,oneof=video audio pdf text"`
	ContentURL  string `json:"content_url"`
	Position    int    `json:"position" validate:"gte=0"`
}

// POST /courses/{courseID}/lessons
func CreateLessonHandler(lessons *lesson.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lessonReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		l, err := lessons.Create(r.Context(), lesson.Lesson{
			CourseID:    chi.URLParam(r, "courseID"),
			Title:       req.Title,
			Description: req.Description,
			ContentType: req.ContentType,
			ContentURL:  req.ContentURL,
			Position:    req.Position,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

// GET /courses/{courseID}/lessons
// The full list, visibility rules included. Managers only.
func ListLessonsHandler(lessons *lesson.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := lessons.ListByCourse(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /courses/{courseID}/lessons/accessible
// Lessons the caller's role may see right now, course order preserved.
func AccessibleLessonsHandler(lessons *lesson.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		if role == "" {
			role = user.RoleGuest
		}
		list, err := lessons.Accessible(r.Context(), chi.URLParam(r, "courseID"), role)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /lessons/{lessonID}
func GetLessonHandler(lessons *lesson.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := lessons.Get(r.Context(), chi.URLParam(r, "lessonID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// PUT /lessons/{lessonID}
func UpdateLessonHandler(lessons *lesson.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lessonReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		l, err := lessons.Update(r.Context(), chi.URLParam(r, "lessonID"), lesson.Lesson{
			Title:       req.Title,
			Description: req.Description,
			ContentType: req.ContentType,
			ContentURL:  req.ContentURL,
			Position:    req.Position,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// DELETE /lessons/{lessonID}
func DeleteLessonHandler(lessons *lesson.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := lessons.Delete(r.Context(), chi.URLParam(r, "lessonID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PATCH /lessons/{lessonID}/visibility
// Partial update: absent fields keep their current value. A patch that fails
// validation leaves the stored rule untouched.
func PatchVisibilityHandler(lessons *lesson.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p visibility.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		l, err := lessons.UpdateVisibility(r.Context(), chi.URLParam(r, "lessonID"), p)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}
