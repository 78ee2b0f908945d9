package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/ctxutil"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/roles"
)

// session — личность запроса плюс снимок ролей. Роли перечитываются на каждый
// запрос, а не кэшируются в токене: смена роли действует немедленно.
type session struct {
	UserID string
	Email  string
	Sets   roles.Sets
}

type ctxKey struct{}

func sessionFrom(ctx context.Context) (session, bool) {
	s, ok := ctx.Value(ctxKey{}).(session)
	return s, ok
}

// requireSession: Bearer-токен → claims → снимок ролей. Проверка «email есть
// хоть в одном множестве» выполняется здесь, до любого другого чтения данных;
// чужим аккаунтам отказ с кодом, по которому клиент делает принудительный
// sign-out.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			s.writeError(w, r, apperr.New(apperr.Unauthenticated, "missing bearer token"))
			return
		}
		claims, err := s.jwtMgr.ParseToken(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx, cancel := ctxutil.WithDBTimeout(r.Context())
		sets, err := db.LoadRoleSets(ctx, s.database)
		cancel()
		if err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.Unavailable, "failed to load roles", err))
			return
		}
		if !sets.IsAllowed(claims.Email) {
			s.writeError(w, r, apperr.New(apperr.PermissionDenied, "account is not registered in this homeschool"))
			return
		}

		sess := session{UserID: claims.UserID, Email: claims.Email, Sets: sets}
		rctx := context.WithValue(r.Context(), ctxKey{}, sess)
		rctx = ctxutil.WithUserID(rctx, sess.UserID)
		rctx = ctxutil.WithEmail(rctx, sess.Email)
		next.ServeHTTP(w, r.WithContext(rctx))
	})
}

// requireStaff — admin или teacher.
func (s *Server) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(r.Context())
		if !ok || !s.rules.CanManageQuizzes(sess.Sets, sess.Email) {
			s.writeError(w, r, apperr.New(apperr.PermissionDenied, "admin or teacher role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRoleManager — только супер-админ.
func (s *Server) requireRoleManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(r.Context())
		if !ok || !s.rules.CanManageRoles(sess.Email) {
			s.writeError(w, r, apperr.New(apperr.PermissionDenied, "only the primary admin can manage users"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
