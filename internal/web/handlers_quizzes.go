package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
)

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	quizzes, err := db.ListQuizzes(ctx, s.database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	quiz, err := db.GetQuiz(ctx, s.database, chi.URLParam(r, "quizID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if quiz == nil {
		s.writeError(w, r, apperr.New(apperr.NotFound, "quiz not found"))
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// handleQuizBySuffix — поиск по хвосту id, под короткие ссылки из старых
// сохранённых закладок.
func (s *Server) handleQuizBySuffix(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	quiz, err := db.GetQuizBySuffix(ctx, s.database, chi.URLParam(r, "suffix"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if quiz == nil {
		s.writeError(w, r, apperr.New(apperr.NotFound, "quiz not found"))
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// handleSaveQuiz: без id — создание (id — slug из заголовка),
// с id — перезапись с полями аудита.
func (s *Server) handleSaveQuiz(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var quiz models.Quiz
	if err := s.decodeBody(r, &quiz); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	saved, err := db.SaveQuiz(ctx, s.database, quiz, sess.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("quizzes", saved.ID)
	s.log.Infow("quiz saved", "id", saved.ID, "by", sess.Email)
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	quizID := chi.URLParam(r, "quizID")

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.DeleteQuiz(ctx, s.database, quizID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("quizzes", quizID)
	s.log.Infow("quiz deleted", "id", quizID, "by", sess.Email)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
