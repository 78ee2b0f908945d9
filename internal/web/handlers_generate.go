package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/quizgen"
)

// handleGenerate — синхронная генерация: лимиты, вызов модели и разбор
// ответа целиком внутри quizgen.Service, здесь только транспорт.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req quizgen.Request
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.gen.Generate(r.Context(), quizgen.Session{UserID: sess.UserID, Email: sess.Email}, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEnqueueGenerate(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req quizgen.AsyncRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.gen.Enqueue(r.Context(), quizgen.Session{UserID: sess.UserID, Email: sess.Email}, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"requestId": id})
}

// handleGenerateResult: ?wait=true блокирует до готовности (или таймаута
// ожидания), иначе одноразовый poll. Готовый исход потребляется — второй
// запрос того же id вернёт pending.
func (s *Server) handleGenerateResult(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var err error
	var res any
	if r.URL.Query().Get("wait") == "true" {
		res, err = s.gen.WaitForResult(r.Context(), requestID)
	} else {
		res, err = s.gen.PollResult(r.Context(), requestID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": res})
}

func (s *Server) handleBookSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, r, apperr.New(apperr.InvalidArgument, "query parameter q is required"))
		return
	}

	ctx, cancel := ctxutil.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	books, err := s.books.Search(ctx, query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}
