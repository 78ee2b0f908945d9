// Package web — REST-поверхность приложения: по одному набору обработчиков
// на бывшую «страницу», все проверки доступа через именованные capability
// из пакета roles.
package web

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hearthside/homeschool-hub/internal/auth"
	"github.com/hearthside/homeschool-hub/internal/books"
	"github.com/hearthside/homeschool-hub/internal/metrics"
	"github.com/hearthside/homeschool-hub/internal/quizgen"
	"github.com/hearthside/homeschool-hub/internal/realtime"
	"github.com/hearthside/homeschool-hub/internal/roles"
)

type Server struct {
	database *sql.DB
	log      *zap.SugaredLogger
	rules    roles.Rules
	jwtMgr   *auth.Manager
	google   auth.TokenVerifier
	gen      *quizgen.Service
	books    *books.Client
	hub      *realtime.Hub
	validate *validator.Validate
}

func NewServer(database *sql.DB, logg *zap.SugaredLogger, r roles.Rules, jwtMgr *auth.Manager,
	google auth.TokenVerifier, gen *quizgen.Service, booksClient *books.Client, hub *realtime.Hub) *Server {
	return &Server{
		database: database,
		log:      logg,
		rules:    r,
		jwtMgr:   jwtMgr,
		google:   google,
		gen:      gen,
		books:    booksClient,
		hub:      hub,
		validate: validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countRequests)

	r.Post("/api/auth/google", s.handleGoogleSignIn)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/api/me", s.handleMe)
		r.Get("/api/me/quizzes", s.handleMyQuizzes)
		r.Get("/api/me/reading", s.handleMyReading)
		r.Get("/api/me/results", s.handleMyResults)
		r.Post("/api/results", s.handleAddResult)
		r.Post("/api/reading/{bookID}/cycle", s.handleCycleMyReading)

		r.Get("/api/subjects", s.handleListSubjects)
		r.Get("/api/quizzes", s.handleListQuizzes)
		r.Get("/api/quizzes/by-suffix/{suffix}", s.handleQuizBySuffix)
		r.Get("/api/quizzes/{quizID}", s.handleGetQuiz)

		// Queue-вариант генерации доступен любому вошедшему (в т.ч. ученику);
		// прямой вызов ниже — только staff.
		r.Post("/api/generate/requests", s.handleEnqueueGenerate)
		r.Get("/api/generate/requests/{requestID}", s.handleGenerateResult)

		// страницы admin+teacher (совместное разрешение)
		r.Group(func(r chi.Router) {
			r.Use(s.requireStaff)

			r.Post("/api/subjects", s.handleSaveSubject)
			r.Delete("/api/subjects/{subjectID}", s.handleDeleteSubject)
			r.Post("/api/subjects/{subjectID}/sections", s.handleSaveSection)
			r.Delete("/api/subjects/{subjectID}/sections/{sectionID}", s.handleDeleteSection)
			r.Patch("/api/subjects/{subjectID}/sections/enabled", s.handleToggleSections)

			r.Post("/api/quizzes", s.handleSaveQuiz)
			r.Delete("/api/quizzes/{quizID}", s.handleDeleteQuiz)

			r.Get("/api/students", s.handleListStudents)
			r.Get("/api/students/{userID}/progress", s.handleStudentProgress)
			r.Get("/api/students/{userID}/reading", s.handleStudentReading)
			r.Post("/api/assignments/quizzes", s.handleAssignQuiz)
			r.Delete("/api/assignments/quizzes/{userID}/{quizID}", s.handleUnassignQuiz)
			r.Get("/api/assignments/quizzes/{quizID}", s.handleAssignedUsers)
			r.Post("/api/assignments/reading", s.handleAssignBooks)
			r.Delete("/api/assignments/reading/{userID}/{bookID}", s.handleDeleteReading)

			r.Get("/api/books/search", s.handleBookSearch)
			r.Post("/api/generate", s.handleGenerate)

			r.Get("/api/admin/results", s.handleAllResults)
			r.Get("/api/admin/results/export", s.handleExportResults)
		})

		// управление пользователями/ролями — только супер-админ
		r.Group(func(r chi.Router) {
			r.Use(s.requireRoleManager)
			r.Get("/api/admin/roles", s.handleListRoles)
			r.Post("/api/admin/roles", s.handleAddRole)
			r.Delete("/api/admin/roles", s.handleRemoveRole)
			r.Get("/api/admin/users", s.handleListUsers)
		})
	})

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.HTTPRequests.WithLabelValues(route, httpStatusClass(rec.status)).Inc()
	})
}

func httpStatusClass(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
