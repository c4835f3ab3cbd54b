package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	api "github.com/swahili-learn/backend/internal/api/http"
	"github.com/swahili-learn/backend/internal/auth"
	"github.com/swahili-learn/backend/internal/config"
	"github.com/swahili-learn/backend/internal/course"
	"github.com/swahili-learn/backend/internal/db"
	"github.com/swahili-learn/backend/internal/grading"
	"github.com/swahili-learn/backend/internal/lesson"
	"github.com/swahili-learn/backend/internal/logging"
	"github.com/swahili-learn/backend/internal/quiz"
	"github.com/swahili-learn/backend/internal/rbac"
	"github.com/swahili-learn/backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}

	users := user.NewSQLStore(dbh)
	courses := course.NewSQLStore(dbh)
	lessons := lesson.NewService(lesson.NewSQLStore(dbh))
	quizzes := quiz.NewService(quiz.NewSQLStore(dbh), grading.NewGrader())

	authSvc := auth.NewService(cfg.AuthSecret, cfg.TokenTTL)
	checker := rbac.NewChecker(nil)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(users))
	r.Post("/auth/login", api.LoginHandler(users, authSvc))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		// Courses
		pr.With(rbac.Require(checker, "courses:read")).
			Get("/courses", api.ListCoursesHandler(courses))
		pr.With(rbac.Require(checker, "courses:read")).
			Get("/courses/{courseID}", api.GetCourseHandler(courses))
		pr.With(rbac.Require(checker, "courses:write")).
			Post("/courses", api.CreateCourseHandler(courses))
		pr.With(rbac.Require(checker, "courses:write")).
			Put("/courses/{courseID}", api.UpdateCourseHandler(courses))
		pr.With(rbac.Require(checker, "courses:delete")).
			Delete("/courses/{courseID}", api.DeleteCourseHandler(courses))

		// Enrollments
		pr.With(rbac.Require(checker, "enrollments:write")).
			Post("/courses/{courseID}/enroll", api.EnrollHandler(courses))
		pr.With(rbac.Require(checker, "enrollments:write")).
			Delete("/courses/{courseID}/enroll", api.UnenrollHandler(courses))
		pr.With(rbac.Require(checker, "enrollments:read")).
			Get("/courses/{courseID}/enrollments", api.ListEnrollmentsHandler(courses))
		pr.With(rbac.RequireAny(checker, "enrollments:write", "enrollments:read")).
			Get("/me/enrollments", api.MyEnrollmentsHandler(courses))

		// Lessons
		pr.With(rbac.Require(checker, "lessons:write")).
			Post("/courses/{courseID}/lessons", api.CreateLessonHandler(lessons))
		pr.With(rbac.Require(checker, "lessons:manage")).
			Get("/courses/{courseID}/lessons", api.ListLessonsHandler(lessons))
		pr.With(rbac.Require(checker, "lessons:read")).
			Get("/courses/{courseID}/lessons/accessible", api.AccessibleLessonsHandler(lessons))
		pr.With(rbac.Require(checker, "lessons:read")).
			Get("/lessons/{lessonID}", api.GetLessonHandler(lessons))
		pr.With(rbac.Require(checker, "lessons:write")).
			Put("/lessons/{lessonID}", api.UpdateLessonHandler(lessons))
		pr.With(rbac.Require(checker, "lessons:delete")).
			Delete("/lessons/{lessonID}", api.DeleteLessonHandler(lessons))
		pr.With(rbac.Require(checker, "lessons:manage")).
			Patch("/lessons/{lessonID}/visibility", api.PatchVisibilityHandler(lessons))

		// Quizzes
		pr.With(rbac.Require(checker, "quizzes:write")).
			Post("/courses/{courseID}/quizzes", api.CreateQuizHandler(quizzes))
		pr.With(rbac.Require(checker, "quizzes:read")).
			Get("/courses/{courseID}/quizzes", api.ListQuizzesHandler(quizzes, checker))
		pr.With(rbac.Require(checker, "quizzes:read")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizzes, checker))
		pr.With(rbac.Require(checker, "quizzes:delete")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(quizzes))
		pr.With(rbac.Require(checker, "quizzes:submit")).
			Post("/quizzes/{quizID}/start", api.StartQuizHandler(quizzes))
		pr.With(rbac.Require(checker, "quizzes:submit")).
			Post("/submissions/{submissionID}", api.SubmitHandler(quizzes))
		pr.With(rbac.Require(checker, "quizzes:submit")).
			Get("/quizzes/{quizID}/results", api.QuizResultHandler(quizzes))

		// Users (instructor/admin)
		pr.With(rbac.RequireAny(checker, "users:list", "students:read")).
			Get("/users", api.ListUsersHandler(users))
		pr.With(rbac.RequireAny(checker, "users:list", "students:read")).
			Get("/users/{userID}", api.GetUserHandler(users))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("env", cfg.Env),
		zap.String("db", cfg.DBDriver))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
