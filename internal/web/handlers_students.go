package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/progress"
)

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	students, err := db.ListStudents(ctx, s.database, sess.Sets.Emails(models.RoleStudent))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": students})
}

// handleStudentProgress — назначенные квизы ученика, декорированные его
// результатами: попытки, лучший процент, производный статус.
func (s *Server) handleStudentProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	assigned, err := s.assignedQuizzes(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": assigned})
}

func (s *Server) handleStudentReading(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	reading, err := db.ListReading(ctx, s.database, chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reading": reading})
}

type assignQuizRequest struct {
	QuizID  string   `json:"quizId" validate:"required"`
	UserIDs []string `json:"userIds" validate:"required,min=1"`
}

// handleAssignQuiz назначает квиз пачке учеников. «Pending»-ученикам (роль
// есть, профиля нет) назначать нельзя: у них ещё нет userId, задание
// потерялось бы при первом входе.
func (s *Server) handleAssignQuiz(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req assignQuizRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, uid := range req.UserIDs {
		if strings.HasPrefix(uid, "pending-") {
			email := strings.TrimPrefix(uid, "pending-")
			s.writeError(w, r, apperr.Newf(apperr.FailedPrecondition,
				"%s hasn't signed in yet and cannot receive assignments", email))
			return
		}
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	quiz, err := db.GetQuiz(ctx, s.database, req.QuizID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if quiz == nil {
		s.writeError(w, r, apperr.New(apperr.NotFound, "quiz not found"))
		return
	}

	if err := db.AssignQuiz(ctx, s.database, req.QuizID, req.UserIDs, sess.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, uid := range req.UserIDs {
		s.hub.Publish("assignments/"+uid, req.QuizID)
	}
	s.log.Infow("quiz assigned", "quiz", req.QuizID, "students", len(req.UserIDs), "by", sess.Email)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUnassignQuiz(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	quizID := chi.URLParam(r, "quizID")

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.UnassignQuiz(ctx, s.database, userID, quizID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("assignments/"+userID, quizID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAssignedUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	userIDs, err := db.ListAssignedUserIDs(ctx, s.database, chi.URLParam(r, "quizID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userIds": userIDs})
}

type assignBooksRequest struct {
	Book    models.Book `json:"book" validate:"required"`
	UserIDs []string    `json:"userIds" validate:"required,min=1"`
}

func (s *Server) handleAssignBooks(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req assignBooksRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Book.ID == "" || req.Book.Title == "" {
		s.writeError(w, r, apperr.New(apperr.InvalidArgument, "book id and title are required"))
		return
	}
	for _, uid := range req.UserIDs {
		if strings.HasPrefix(uid, "pending-") {
			email := strings.TrimPrefix(uid, "pending-")
			s.writeError(w, r, apperr.Newf(apperr.FailedPrecondition,
				"%s hasn't signed in yet and cannot receive assignments", email))
			return
		}
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.AssignBook(ctx, s.database, req.Book, req.UserIDs, sess.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, uid := range req.UserIDs {
		s.hub.Publish("reading/"+uid, req.Book.ID)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	bookID := chi.URLParam(r, "bookID")

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.DeleteReadingAssignment(ctx, s.database, userID, bookID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("reading/"+userID, bookID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// assignedQuizzes — общая композиция «назначения + квизы + результаты».
// Назначения на удалённые квизы молча пропускаются.
func (s *Server) assignedQuizzes(ctx context.Context, userID string) ([]models.AssignedQuiz, error) {
	assignments, err := db.ListAssignments(ctx, s.database, userID)
	if err != nil {
		return nil, err
	}
	quizzes, err := db.ListQuizzes(ctx, s.database)
	if err != nil {
		return nil, err
	}
	results, err := db.ListResultsByUser(ctx, s.database, userID)
	if err != nil {
		return nil, err
	}
	return progress.AssignedQuizzes(assignments, quizzes, results), nil
}
