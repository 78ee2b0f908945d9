package web

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/roles"
)

type roleListResponse struct {
	Admins   []string `json:"admins"`
	Teachers []string `json:"teachers"`
	Students []string `json:"students"`
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, roleListResponse{
		Admins:   sess.Sets.Emails(models.RoleAdmin),
		Teachers: sess.Sets.Emails(models.RoleTeacher),
		Students: sess.Sets.Emails(models.RoleStudent),
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	users, err := db.ListUsers(ctx, s.database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

type roleChangeRequest struct {
	Email   string      `json:"email" validate:"required"`
	Role    models.Role `json:"role" validate:"required"`
	Confirm bool        `json:"confirm,omitempty"`
}

func (s *Server) handleAddRole(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req roleChangeRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Role.Valid() {
		s.writeError(w, r, apperr.Newf(apperr.InvalidArgument, "unknown role %q", req.Role))
		return
	}
	if !roles.ValidEmail(req.Email) {
		s.writeError(w, r, apperr.New(apperr.InvalidArgument, "invalid email address"))
		return
	}
	// выдача роли уже состоящему в другой роли email-у переносит его туда,
	// поэтому перенос проходит ту же защиту админов, что и удаление
	if err := s.rules.CheckMove(sess.Sets, req.Email, req.Role); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.SetRole(ctx, s.database, req.Email, req.Role); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.Unavailable, "failed to save role", err))
		return
	}
	s.hub.Publish("user-roles", nil)
	s.log.Infow("role granted", "email", req.Email, "role", req.Role)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleRemoveRole требует confirm:true — удаление из ролей лишает аккаунт
// входа целиком, случайный клик тут слишком дорог.
func (s *Server) handleRemoveRole(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req roleChangeRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Confirm {
		s.writeError(w, r, apperr.New(apperr.FailedPrecondition, "removal requires explicit confirmation"))
		return
	}
	if err := s.rules.CheckRemoval(sess.Sets, req.Email, req.Role); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	if err := db.RemoveRole(ctx, s.database, req.Email, req.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeError(w, r, apperr.Newf(apperr.NotFound, "%s is not a %s", req.Email, req.Role))
			return
		}
		s.writeError(w, r, apperr.Wrap(apperr.Unavailable, "failed to remove role", err))
		return
	}
	s.hub.Publish("user-roles", nil)
	s.log.Infow("role revoked", "email", req.Email, "role", req.Role)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
