package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swahili-learn/backend/internal/auth"
	"github.com/swahili-learn/backend/internal/course"
)

type courseReq struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// POST /courses
func CreateCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		c := course.Course{
			ID:           uuid.NewString(),
			Title:        req.Title,
			Description:  req.Description,
			Category:     req.Category,
			Difficulty:   req.Difficulty,
			InstructorID: auth.SubjectFromContext(r.Context()),
			CreatedAt:    time.Now().Unix(),
		}
		if err := courses.Put(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// GET /courses?q=&limit=&offset=
func ListCoursesHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		list, err := courses.List(r.Context(), r.URL.Query().Get("q"), limit, offset)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /courses/{courseID}
func GetCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := courses.Get(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// PUT /courses/{courseID}
func UpdateCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		c, err := courses.Get(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		c.Title = req.Title
		c.Description = req.Description
		c.Category = req.Category
		c.Difficulty = req.Difficulty
		if err := courses.Update(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DELETE /courses/{courseID}
func DeleteCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := courses.Delete(r.Context(), chi.URLParam(r, "courseID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /courses/{courseID}/enroll
// The caller enrolls themselves; instructors manage rosters elsewhere.
func EnrollHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if _, err := courses.Get(r.Context(), courseID); err != nil {
			writeErr(w, err)
			return
		}
		userID := auth.SubjectFromContext(r.Context())
		now := time.Now().Unix()
		if err := courses.Enroll(r.Context(), courseID, userID, now); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, course.Enrollment{CourseID: courseID, UserID: userID, EnrolledAt: now})
	}
}

// DELETE /courses/{courseID}/enroll
func UnenrollHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := courses.Unenroll(r.Context(), chi.URLParam(r, "courseID"), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /courses/{courseID}/enrollments
func ListEnrollmentsHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := courses.ListEnrollments(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /me/enrollments
func MyEnrollmentsHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := courses.ListUserEnrollments(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
