// Package roles — правила доступа: три множества email-ов и именованные
// проверки возможностей. Единственный источник истины для всех страниц:
// раньше каждая страница копировала себе свой вариант проверки, из-за чего
// они расходились.
package roles

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/models"
)

// Sets — admin/teacher/student; email хранится в нижнем регистре и состоит
// максимум в одном множестве.
type Sets struct {
	Admins   map[string]struct{}
	Teachers map[string]struct{}
	Students map[string]struct{}
}

func NewSets() Sets {
	return Sets{
		Admins:   make(map[string]struct{}),
		Teachers: make(map[string]struct{}),
		Students: make(map[string]struct{}),
	}
}

// DefaultSets — захардкоженный fallback на случай пустого хранилища,
// тот же состав, что и у исходной системы.
func DefaultSets(primaryAdmin string) Sets {
	s := NewSets()
	s.Put(primaryAdmin, models.RoleAdmin)
	s.Put("iyoko.bainter@gmail.com", models.RoleTeacher)
	s.Put("trevor.bainter@gmail.com", models.RoleTeacher)
	s.Put("madmaxmadadax@gmail.com", models.RoleStudent)
	s.Put("sakurasaurusjade@gmail.com", models.RoleStudent)
	return s
}

func norm(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Put переносит email в указанную роль, убирая его из остальных множеств.
func (s Sets) Put(email string, role models.Role) {
	e := norm(email)
	delete(s.Admins, e)
	delete(s.Teachers, e)
	delete(s.Students, e)
	switch role {
	case models.RoleAdmin:
		s.Admins[e] = struct{}{}
	case models.RoleTeacher:
		s.Teachers[e] = struct{}{}
	case models.RoleStudent:
		s.Students[e] = struct{}{}
	}
}

func (s Sets) IsAdmin(email string) bool {
	_, ok := s.Admins[norm(email)]
	return ok
}

func (s Sets) IsTeacher(email string) bool {
	_, ok := s.Teachers[norm(email)]
	return ok
}

func (s Sets) IsStudent(email string) bool {
	_, ok := s.Students[norm(email)]
	return ok
}

// IsAllowed — email хоть в одном множестве; всем остальным вход закрыт.
func (s Sets) IsAllowed(email string) bool {
	return s.IsAdmin(email) || s.IsTeacher(email) || s.IsStudent(email)
}

func (s Sets) RoleOf(email string) (models.Role, bool) {
	switch {
	case s.IsAdmin(email):
		return models.RoleAdmin, true
	case s.IsTeacher(email):
		return models.RoleTeacher, true
	case s.IsStudent(email):
		return models.RoleStudent, true
	}
	return "", false
}

func (s Sets) Emails(role models.Role) []string {
	var m map[string]struct{}
	switch role {
	case models.RoleAdmin:
		m = s.Admins
	case models.RoleTeacher:
		m = s.Teachers
	case models.RoleStudent:
		m = s.Students
	}
	out := make([]string, 0, len(m))
	for e := range m {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidEmail(email string) bool { return emailRe.MatchString(norm(email)) }

// Rules — именованные проверки возможностей поверх множеств.
type Rules struct {
	// PrimaryAdmin — супер-админ: только он управляет ролями, и его нельзя
	// удалить из админов.
	PrimaryAdmin string
}

// CanManageRoles — доступ к странице пользователей/ролей. Сознательно уже,
// чем общий IsAdmin: так было в исходной системе, оставлено как правило,
// а не как случайность.
func (r Rules) CanManageRoles(email string) bool {
	return norm(email) == norm(r.PrimaryAdmin)
}

func (r Rules) CanManageQuizzes(s Sets, email string) bool {
	return s.IsAdmin(email) || s.IsTeacher(email)
}

func (r Rules) CanManageStudents(s Sets, email string) bool {
	return s.IsAdmin(email) || s.IsTeacher(email)
}

func (r Rules) CanGenerateQuiz(s Sets, email string) bool {
	return s.IsAdmin(email) || s.IsTeacher(email)
}

func (r Rules) CanTakeQuiz(s Sets, email string) bool {
	return s.IsStudent(email)
}

// CheckMove — выдача новой роли переносит email из текущего множества,
// то есть фактически удаляет его оттуда; действует та же защита, что и
// при явном удалении.
func (r Rules) CheckMove(s Sets, email string, newRole models.Role) error {
	cur, ok := s.RoleOf(email)
	if !ok || cur == newRole {
		return nil
	}
	return r.CheckRemoval(s, email, cur)
}

// CheckRemoval — защита от удаления супер-админа и последнего админа.
func (r Rules) CheckRemoval(s Sets, email string, role models.Role) error {
	e := norm(email)
	if role == models.RoleAdmin {
		if e == norm(r.PrimaryAdmin) {
			return apperr.New(apperr.PermissionDenied, "the primary admin cannot be removed")
		}
		if s.IsAdmin(e) && len(s.Admins) <= 1 {
			return apperr.New(apperr.PermissionDenied, "cannot remove the last remaining admin")
		}
	}
	return nil
}
