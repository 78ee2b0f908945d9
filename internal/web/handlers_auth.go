package web

import (
	"net/http"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
)

type signInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type signInResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
	Role  models.Role `json:"role"`
}

// handleGoogleSignIn: Google id_token → проверка членства в ролях → upsert
// профиля → свой JWT. Проверка членства идёт ДО записи профиля: чужой Google-
// аккаунт не оставляет в системе никаких следов.
func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.google.Verify(req.IDToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	sets, err := db.LoadRoleSets(ctx, s.database)
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.Unavailable, "failed to load roles", err))
		return
	}
	if !sets.IsAllowed(profile.Email) {
		s.writeError(w, r, apperr.New(apperr.PermissionDenied, "account is not registered in this homeschool"))
		return
	}

	user, err := db.EnsureUser(ctx, s.database, profile.Email, profile.Name, profile.Picture,
		sets.IsAdmin(profile.Email))
	if err != nil {
		// сбой upsert-а не валит вход: берём существующий профиль, если есть
		s.log.Warnw("profile upsert failed", "email", profile.Email, "err", err)
		existing, lookupErr := db.GetUserByEmail(ctx, s.database, profile.Email)
		if lookupErr != nil || existing == nil {
			s.writeError(w, r, apperr.Wrap(apperr.Unavailable, "failed to save user profile", err))
			return
		}
		user = *existing
	}

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.Internal, "failed to issue session token", err))
		return
	}

	role, _ := sets.RoleOf(user.Email)
	s.log.Infow("user signed in", "email", user.Email, "role", role)
	writeJSON(w, http.StatusOK, signInResponse{Token: token, User: user, Role: role})
}

type meResponse struct {
	User models.User `json:"user"`
	Role models.Role `json:"role"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	ctx, cancel := ctxutil.WithDBTimeout(r.Context())
	defer cancel()

	user, err := db.GetUserByID(ctx, s.database, sess.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, apperr.New(apperr.NotFound, "profile not found"))
		return
	}
	role, _ := sess.Sets.RoleOf(sess.Email)
	writeJSON(w, http.StatusOK, meResponse{User: *user, Role: role})
}
