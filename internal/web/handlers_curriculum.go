package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
)

// handleListSubjects: пустой учебный план досеивается дефолтами при первом
// заходе админа — ленивый аналог стартового наполнения исходной системы.
func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	subjects, err := db.ListSubjects(ctx, s.database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(subjects) == 0 && sess.Sets.IsAdmin(sess.Email) {
		if err := db.EnsureDefaultCurriculum(ctx, s.database); err != nil {
			s.writeError(w, r, err)
			return
		}
		if subjects, err = db.ListSubjects(ctx, s.database); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

func (s *Server) handleSaveSubject(w http.ResponseWriter, r *http.Request) {
	var subj models.Subject
	if err := s.decodeBody(r, &subj); err != nil {
		s.writeError(w, r, err)
		return
	}
	if subj.ID == "" || subj.Title == "" {
		s.writeError(w, r, apperr.New(apperr.InvalidArgument, "subject id and title are required"))
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.UpsertSubject(ctx, s.database, subj); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("curriculum", nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.DeleteSubject(ctx, s.database, chi.URLParam(r, "subjectID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("curriculum", nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSaveSection(w http.ResponseWriter, r *http.Request) {
	var sec models.Section
	if err := s.decodeBody(r, &sec); err != nil {
		s.writeError(w, r, err)
		return
	}
	if sec.ID == "" || sec.Title == "" {
		s.writeError(w, r, apperr.New(apperr.InvalidArgument, "section id and title are required"))
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.UpsertSection(ctx, s.database, chi.URLParam(r, "subjectID"), sec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("curriculum", nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	err := db.DeleteSection(ctx, s.database, chi.URLParam(r, "subjectID"), chi.URLParam(r, "sectionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("curriculum", nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type toggleSectionsRequest struct {
	Updates map[string]bool `json:"updates" validate:"required"`
}

// handleToggleSections — пакетное включение/выключение разделов одного
// предмета; применяется одной транзакцией, частичных состояний не бывает.
func (s *Server) handleToggleSections(w http.ResponseWriter, r *http.Request) {
	var req toggleSectionsRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Updates) == 0 {
		s.writeError(w, r, apperr.New(apperr.InvalidArgument, "updates map is empty"))
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.SetSectionsEnabled(ctx, s.database, chi.URLParam(r, "subjectID"), req.Updates); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Publish("curriculum", nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
