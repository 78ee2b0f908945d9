package roles_test

import (
	"testing"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/roles"
)

const primary = "primary@example.com"

func newRules() roles.Rules { return roles.Rules{PrimaryAdmin: primary} }

func TestPut_MovesMembership(t *testing.T) {
	s := roles.NewSets()
	s.Put("Kid@Example.com", models.RoleStudent)
	if !s.IsStudent("kid@example.com") {
		t.Fatal("ожидали student после Put (регистр не должен влиять)")
	}

	// повышение до teacher убирает из students
	s.Put("kid@example.com", models.RoleTeacher)
	if s.IsStudent("kid@example.com") {
		t.Fatal("email остался в students после переноса в teachers")
	}
	if !s.IsTeacher("kid@example.com") {
		t.Fatal("email не попал в teachers")
	}
}

func TestIsAllowed_UnionOfSets(t *testing.T) {
	s := roles.NewSets()
	s.Put("a@example.com", models.RoleAdmin)
	s.Put("t@example.com", models.RoleTeacher)
	s.Put("s@example.com", models.RoleStudent)

	for _, email := range []string{"a@example.com", "t@example.com", "s@example.com"} {
		if !s.IsAllowed(email) {
			t.Fatalf("%s должен быть допущен", email)
		}
	}
	if s.IsAllowed("stranger@example.com") {
		t.Fatal("чужой email допущен")
	}
}

func TestRoleOf(t *testing.T) {
	s := roles.NewSets()
	s.Put("t@example.com", models.RoleTeacher)

	role, ok := s.RoleOf("T@Example.Com")
	if !ok || role != models.RoleTeacher {
		t.Fatalf("получили %q, ok=%v", role, ok)
	}
	if _, ok := s.RoleOf("nobody@example.com"); ok {
		t.Fatal("нашли роль у незарегистрированного email")
	}
}

func TestCheckRemoval_PrimaryAdminProtected(t *testing.T) {
	r := newRules()
	s := roles.DefaultSets(primary)
	s.Put("second@example.com", models.RoleAdmin)

	err := r.CheckRemoval(s, primary, models.RoleAdmin)
	if !apperr.IsKind(err, apperr.PermissionDenied) {
		t.Fatalf("ожидали permission-denied, получили %v", err)
	}
}

func TestCheckRemoval_LastAdminProtected(t *testing.T) {
	r := newRules()
	s := roles.NewSets()
	s.Put("only@example.com", models.RoleAdmin)

	err := r.CheckRemoval(s, "only@example.com", models.RoleAdmin)
	if !apperr.IsKind(err, apperr.PermissionDenied) {
		t.Fatalf("ожидали permission-denied, получили %v", err)
	}

	// при двух админах обычного удалять можно
	s.Put("second@example.com", models.RoleAdmin)
	if err := r.CheckRemoval(s, "second@example.com", models.RoleAdmin); err != nil {
		t.Fatalf("неожиданный отказ: %v", err)
	}
	// не-админские роли защитой не покрываются
	if err := r.CheckRemoval(s, "kid@example.com", models.RoleStudent); err != nil {
		t.Fatalf("неожиданный отказ для student: %v", err)
	}
}

func TestCheckMove_GuardsAdminDemotion(t *testing.T) {
	r := newRules()
	s := roles.DefaultSets(primary)

	// понижение супер-админа в студенты — тот же перенос через Put,
	// что и upsert в хранилище
	err := r.CheckMove(s, primary, models.RoleStudent)
	if !apperr.IsKind(err, apperr.PermissionDenied) {
		t.Fatalf("ожидали permission-denied, получили %v", err)
	}

	// единственный админ не может быть перенесён в другую роль
	s2 := roles.NewSets()
	s2.Put("only@example.com", models.RoleAdmin)
	err = r.CheckMove(s2, "only@example.com", models.RoleTeacher)
	if !apperr.IsKind(err, apperr.PermissionDenied) {
		t.Fatalf("ожидали permission-denied, получили %v", err)
	}

	// повышение teacher до admin и повторная выдача той же роли — без отказа
	s2.Put("t@example.com", models.RoleTeacher)
	if err := r.CheckMove(s2, "t@example.com", models.RoleAdmin); err != nil {
		t.Fatalf("неожиданный отказ при повышении: %v", err)
	}
	if err := r.CheckMove(s2, "only@example.com", models.RoleAdmin); err != nil {
		t.Fatalf("неожиданный отказ при повторной выдаче той же роли: %v", err)
	}

	// незнакомый email — обычное добавление, защита не срабатывает
	if err := r.CheckMove(s2, "new@example.com", models.RoleStudent); err != nil {
		t.Fatalf("неожиданный отказ для нового email: %v", err)
	}
}

func TestCanManageRoles_OnlyPrimary(t *testing.T) {
	r := newRules()
	s := roles.DefaultSets(primary)
	s.Put("other@example.com", models.RoleAdmin)

	if !r.CanManageRoles(primary) {
		t.Fatal("супер-админ должен управлять ролями")
	}
	// обычный админ — нет: доступ уже, чем IsAdmin
	if r.CanManageRoles("other@example.com") {
		t.Fatal("обычный админ не должен управлять ролями")
	}
}

func TestCanGenerateQuiz(t *testing.T) {
	r := newRules()
	s := roles.NewSets()
	s.Put("a@example.com", models.RoleAdmin)
	s.Put("t@example.com", models.RoleTeacher)
	s.Put("kid@example.com", models.RoleStudent)

	if !r.CanGenerateQuiz(s, "a@example.com") || !r.CanGenerateQuiz(s, "t@example.com") {
		t.Fatal("admin и teacher должны генерировать квизы")
	}
	if r.CanGenerateQuiz(s, "kid@example.com") {
		t.Fatal("student не должен генерировать квизы")
	}
}

func TestValidEmail(t *testing.T) {
	good := []string{"a@b.co", "First.Last@example.org"}
	bad := []string{"", "no-at", "two@@example.com", "a b@example.com"}
	for _, e := range good {
		if !roles.ValidEmail(e) {
			t.Errorf("%q должен быть валиден", e)
		}
	}
	for _, e := range bad {
		if roles.ValidEmail(e) {
			t.Errorf("%q не должен быть валиден", e)
		}
	}
}
