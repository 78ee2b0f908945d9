package web

import (
	"bytes"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/export"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/progress"
)

func (s *Server) handleMyQuizzes(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	assigned, err := s.assignedQuizzes(ctx, sess.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": assigned})
}

func (s *Server) handleMyReading(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	reading, err := db.ListReading(ctx, s.database, sess.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reading": reading})
}

// handleCycleMyReading — клик ученика по книге: статус идёт по кольцу
// assigned → reading → completed → assigned.
func (s *Server) handleCycleMyReading(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	bookID := chi.URLParam(r, "bookID")

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	status, err := db.CycleReadingStatus(ctx, s.database, sess.UserID, bookID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("reading/"+sess.UserID, bookID)
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (s *Server) handleMyResults(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	results, err := db.ListResultsByUser(ctx, s.database, sess.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"average": progress.AverageScore(results),
	})
}

type addResultRequest struct {
	QuizID string `json:"quizId" validate:"required"`
	Score  int    `json:"score"`
	Total  int    `json:"total" validate:"required"`
}

// handleAddResult — append-only запись попытки. Процент считает сервер,
// клиентскому проценту не доверяем.
func (s *Server) handleAddResult(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req addResultRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Total <= 0 || req.Score < 0 || req.Score > req.Total {
		s.writeError(w, r, apperr.New(apperr.InvalidArgument, "score must be between 0 and total"))
		return
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
	user, err := db.GetUserByID(ctx, s.database, sess.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, apperr.New(apperr.NotFound, "profile not found"))
		return
	}

	res := models.QuizResult{
		UserID:     sess.UserID,
		UserName:   user.Name,
		UserEmail:  user.Email,
		QuizID:     quiz.ID,
		QuizTitle:  quiz.Title,
		Score:      req.Score,
		Total:      req.Total,
		Percentage: int(math.Round(float64(req.Score) / float64(req.Total) * 100)),
		Timestamp:  time.Now().UTC(),
	}
	id, err := db.AddResult(ctx, s.database, res)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res.ID = id
	s.hub.Publish("results/"+sess.UserID, res)
	s.log.Infow("quiz attempt recorded", "user", sess.Email, "quiz", quiz.ID, "pct", res.Percentage)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAllResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	results, err := db.ListAllResults(ctx, s.database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleExportResults отдаёт книгу Excel с листами «Attempts» и «Summary».
func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	results, err := db.ListAllResults(ctx, s.database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wb, err := export.BuildResultsWorkbook(results)
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.Internal, "failed to build workbook", err))
		return
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.Internal, "failed to write workbook", err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-results.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}
