//go:build testutil
// +build testutil

package quizgen_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/quizgen"
	"github.com/hearthside/homeschool-hub/internal/realtime"
	"github.com/hearthside/homeschool-hub/internal/roles"
	"github.com/hearthside/homeschool-hub/internal/testutil/testdb"
)

const (
	primaryAdmin = "primary@example.com"
	teacherEmail = "teacher@example.com"
	dailyLimit   = 5
)

// fakeGen отдаёт фиксированный валидный ответ модели.
type fakeGen struct {
	mu    sync.Mutex
	calls int
	out   string
}

func (f *fakeGen) Complete(ctx context.Context, prompt string) (string, quizgen.TokenUsage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.out, quizgen.TokenUsage{InputTokens: 120, OutputTokens: 500}, nil
}

func (f *fakeGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const fakeQuizJSON = `{"title": "Hatchet Quiz", "questions": [
  {"question": "q1", "options": ["a", "b", "c", "d"], "correctAnswer": 0},
  {"question": "q2", "options": ["a", "b", "c", "d"], "correctAnswer": 1},
  {"question": "q3", "options": ["a", "b", "c", "d"], "correctAnswer": 2}
]}`

type notifierSpy struct {
	mu       sync.Mutex
	quota    int
	warnings int
}

func (n *notifierSpy) QuotaExhausted(email string, count, limit int) {
	n.mu.Lock()
	n.quota++
	n.mu.Unlock()
}

func (n *notifierSpy) TeacherWarning(email string, count, limit int) {
	n.mu.Lock()
	n.warnings++
	n.mu.Unlock()
}

func startService(t *testing.T) (*quizgen.Service, *testdb.DBHandle, *fakeGen, *notifierSpy) {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)

	ctx := context.Background()
	if err := db.SetRole(ctx, h.DB, primaryAdmin, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := db.SetRole(ctx, h.DB, teacherEmail, models.RoleTeacher); err != nil {
		t.Fatal(err)
	}

	gen := &fakeGen{out: fakeQuizJSON}
	spy := &notifierSpy{}
	svc := quizgen.NewService(h.DB, gen, roles.Rules{PrimaryAdmin: primaryAdmin},
		realtime.NewHub(), zap.NewNop().Sugar(), "test-model", dailyLimit)
	svc.SetNotifier(spy)
	return svc, h, gen, spy
}

func seedUsage(t *testing.T, h *testdb.DBHandle, n int, age time.Duration) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := db.AddUsageLog(context.Background(), h.DB, models.UsageLogEntry{
			Timestamp:     time.Now().Add(-age).UTC(),
			UserID:        "u1",
			UserEmail:     teacherEmail,
			BookTitle:     "Hatchet",
			QuestionCount: 8,
			Difficulty:    models.DifficultyMedium,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestGenerate_HappyPath(t *testing.T) {
	svc, _, gen, _ := startService(t)

	resp, err := svc.Generate(context.Background(),
		quizgen.Session{UserID: "u1", Email: teacherEmail},
		quizgen.Request{BookTitle: "Hatchet"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Quiz == nil || len(resp.Quiz.Questions) != 3 {
		t.Fatalf("получили %#v", resp)
	}
	if resp.Usage.OutputTokens != 500 {
		t.Fatalf("usage не прокинулся: %#v", resp.Usage)
	}
	if gen.callCount() != 1 {
		t.Fatalf("модель вызвана %d раз", gen.callCount())
	}
}

func TestGenerate_RequiresStaffRole(t *testing.T) {
	svc, h, _, _ := startService(t)
	if err := db.SetRole(context.Background(), h.DB, "kid@example.com", models.RoleStudent); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Generate(context.Background(),
		quizgen.Session{UserID: "u2", Email: "kid@example.com"},
		quizgen.Request{BookTitle: "Hatchet"})
	if !apperr.IsKind(err, apperr.PermissionDenied) {
		t.Fatalf("ожидали permission-denied, получили %v", err)
	}

	_, err = svc.Generate(context.Background(), quizgen.Session{},
		quizgen.Request{BookTitle: "Hatchet"})
	if !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Fatalf("ожидали unauthenticated, получили %v", err)
	}
}

func TestGenerate_QuestionCountBounds(t *testing.T) {
	svc, _, _, _ := startService(t)
	sess := quizgen.Session{UserID: "u1", Email: teacherEmail}

	for _, count := range []int{2, 21} {
		_, err := svc.Generate(context.Background(), sess,
			quizgen.Request{BookTitle: "Hatchet", QuestionCount: count})
		if !apperr.IsKind(err, apperr.InvalidArgument) {
			t.Fatalf("count=%d: ожидали invalid-argument, получили %v", count, err)
		}
	}
	// граничные значения проходят
	for _, count := range []int{3, 20} {
		if _, err := svc.Generate(context.Background(), sess,
			quizgen.Request{BookTitle: "Hatchet", QuestionCount: count}); err != nil {
			t.Fatalf("count=%d: %v", count, err)
		}
	}
}

func TestGenerate_RollingLimit(t *testing.T) {
	svc, h, gen, spy := startService(t)
	seedUsage(t, h, dailyLimit, 1*time.Hour)

	sess := quizgen.Session{UserID: "u1", Email: teacherEmail}
	_, err := svc.Generate(context.Background(), sess, quizgen.Request{BookTitle: "Hatchet"})
	if !apperr.IsKind(err, apperr.ResourceExhausted) {
		t.Fatalf("ожидали resource-exhausted, получили %v", err)
	}
	if gen.callCount() != 0 {
		t.Fatal("модель не должна вызываться при исчерпанной квоте")
	}
	if spy.quota != 1 {
		t.Fatalf("алерт о квоте: %d", spy.quota)
	}
}

func TestGenerate_WindowIsRolling(t *testing.T) {
	svc, h, _, _ := startService(t)
	// записи старше 24 часов в окно не попадают
	seedUsage(t, h, dailyLimit, 25*time.Hour)

	_, err := svc.Generate(context.Background(),
		quizgen.Session{UserID: "u1", Email: teacherEmail},
		quizgen.Request{BookTitle: "Hatchet"})
	if err != nil {
		t.Fatalf("старые записи заблокировали генерацию: %v", err)
	}
}

func TestGenerate_AdminOverride(t *testing.T) {
	svc, h, _, _ := startService(t)
	seedUsage(t, h, dailyLimit, 1*time.Hour)

	resp, err := svc.Generate(context.Background(),
		quizgen.Session{UserID: "a1", Email: primaryAdmin},
		quizgen.Request{BookTitle: "Hatchet", OverrideLimit: true})
	if err != nil {
		t.Fatalf("админский override должен проходить: %v", err)
	}
	if resp.Quiz == nil {
		t.Fatal("пустой ответ")
	}
}

func TestGenerate_TeacherOverrideAlwaysRefused(t *testing.T) {
	svc, _, gen, _ := startService(t)

	// квота ещё не исчерпана — override учителя всё равно отклоняется
	_, err := svc.Generate(context.Background(),
		quizgen.Session{UserID: "u1", Email: teacherEmail},
		quizgen.Request{BookTitle: "Hatchet", OverrideLimit: true})
	if !apperr.IsKind(err, apperr.PermissionDenied) {
		t.Fatalf("ожидали permission-denied, получили %v", err)
	}
	if !strings.Contains(err.Error(), primaryAdmin) {
		t.Fatalf("сообщение должно называть супер-админа: %v", err)
	}
	if gen.callCount() != 0 {
		t.Fatal("модель не должна вызываться")
	}
}

func TestGenerate_TeacherWarningThreshold(t *testing.T) {
	svc, h, _, spy := startService(t)
	// одна запись в окне: текущая генерация станет второй — порог предупреждения
	seedUsage(t, h, 1, time.Hour)

	resp, err := svc.Generate(context.Background(),
		quizgen.Session{UserID: "u1", Email: teacherEmail},
		quizgen.Request{BookTitle: "Hatchet"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Warning == nil || resp.Warning.Count != 2 || resp.Warning.Limit != dailyLimit {
		t.Fatalf("ожидали предупреждение на второй генерации: %#v", resp.Warning)
	}
	if spy.warnings != 1 {
		t.Fatalf("алертов учителю: %d", spy.warnings)
	}

	// у админа предупреждений нет
	respA, err := svc.Generate(context.Background(),
		quizgen.Session{UserID: "a1", Email: primaryAdmin},
		quizgen.Request{BookTitle: "Hatchet"})
	if err != nil {
		t.Fatal(err)
	}
	if respA.Warning != nil {
		t.Fatalf("админ получил предупреждение: %#v", respA.Warning)
	}
}

func TestAsyncPipeline_EnqueueProcessPoll(t *testing.T) {
	svc, _, _, _ := startService(t)
	ctx := context.Background()
	sess := quizgen.Session{UserID: "u1", Email: teacherEmail}

	id, err := svc.Enqueue(ctx, sess, quizgen.AsyncRequest{
		BookTitle: "Hatchet", Chapter: "3", NumQuestions: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	// до обработки исхода нет
	if res, err := svc.PollResult(ctx, id); err != nil || res != nil {
		t.Fatalf("res=%#v err=%v", res, err)
	}

	if err := svc.ProcessPending(ctx); err != nil {
		t.Fatal(err)
	}

	res, err := svc.PollResult(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Status != models.GenCompleted || res.Quiz == nil {
		t.Fatalf("получили %#v", res)
	}

	// исход одноразовый
	if res2, err := svc.PollResult(ctx, id); err != nil || res2 != nil {
		t.Fatalf("повторное чтение: res=%#v err=%v", res2, err)
	}
}

func TestWaitForResult_UnblocksOnWorker(t *testing.T) {
	svc, _, _, _ := startService(t)
	ctx := context.Background()
	sess := quizgen.Session{UserID: "u1", Email: teacherEmail}

	id, err := svc.Enqueue(ctx, sess, quizgen.AsyncRequest{BookTitle: "Hatchet", NumQuestions: 3})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan *models.GenResult, 1)
	go func() {
		res, err := svc.WaitForResult(ctx, id)
		if err != nil {
			t.Error(err)
		}
		done <- res
	}()

	time.Sleep(100 * time.Millisecond)
	if err := svc.ProcessPending(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case res := <-done:
		if res == nil || res.Status != models.GenCompleted {
			t.Fatalf("получили %#v", res)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("ожидание не разблокировалось")
	}
}
