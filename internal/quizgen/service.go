// Package quizgen — шлюз генерации квизов: проверка прав, скользящий
// суточный лимит по журналу использования, вызов внешнего генератора и
// структурная проверка ответа.
package quizgen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/metrics"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/realtime"
	"github.com/hearthside/homeschool-hub/internal/roles"
)

const (
	// WarningThreshold — с какого числа генераций за сутки учитель получает
	// предупреждение в ответе.
	WarningThreshold = 2
	// WaitTimeout — клиентский таймаут ожидания асинхронного результата;
	// опоздавшая запись после таймаута просто остаётся до чистки.
	WaitTimeout = 120 * time.Second

	rollingWindow = 24 * time.Hour
	minQuestions  = 3
	maxQuestions  = 20
	defQuestions  = 8
)

type Generator interface {
	Complete(ctx context.Context, prompt string) (string, TokenUsage, error)
}

// Notifier — необязательный канал алертов админам; все методы
// fire-and-forget.
type Notifier interface {
	QuotaExhausted(email string, count, limit int)
	TeacherWarning(email string, count, limit int)
}

// Session — явная личность вызывающего; прокидывается в каждый вызов вместо
// процесс-глобального «текущего пользователя».
type Session struct {
	UserID string
	Email  string
}

type Request struct {
	BookTitle     string            `json:"bookTitle"`
	Author        string            `json:"author,omitempty"`
	QuestionCount int               `json:"questionCount,omitempty"`
	Difficulty    models.Difficulty `json:"difficulty,omitempty"`
	Chapters      string            `json:"chapters,omitempty"`
	Context       string            `json:"context,omitempty"`
	OverrideLimit bool              `json:"overrideLimit,omitempty"`
}

type Warning struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	Limit   int    `json:"limit"`
}

type Response struct {
	Success bool         `json:"success"`
	Quiz    *models.Quiz `json:"quiz"`
	Usage   TokenUsage   `json:"usage"`
	Warning *Warning     `json:"warning,omitempty"`
}

type Service struct {
	database   *sql.DB
	gen        Generator
	rules      roles.Rules
	hub        *realtime.Hub
	log        *zap.SugaredLogger
	model      string
	dailyLimit int
	notify     Notifier
	now        func() time.Time
	locks      *userLimiter
}

func NewService(database *sql.DB, gen Generator, r roles.Rules, hub *realtime.Hub, logg *zap.SugaredLogger, model string, dailyLimit int) *Service {
	return &Service{
		database:   database,
		gen:        gen,
		rules:      r,
		hub:        hub,
		log:        logg,
		model:      model,
		dailyLimit: dailyLimit,
		now:        time.Now,
		locks:      newUserLimiter(),
	}
}

// SetNotifier подключает канал алертов (nil — алерты выключены).
func (s *Service) SetNotifier(n Notifier) { s.notify = n }

// SetClock — подмена часов в тестах.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) validate(req *Request) error {
	if strings.TrimSpace(req.BookTitle) == "" {
		return apperr.New(apperr.InvalidArgument, "Book title is required")
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = defQuestions
	}
	if req.QuestionCount < minQuestions || req.QuestionCount > maxQuestions {
		return apperr.Newf(apperr.InvalidArgument, "Question count must be between %d and %d", minQuestions, maxQuestions)
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyMedium
	}
	if !req.Difficulty.Valid() {
		return apperr.Newf(apperr.InvalidArgument, "unknown difficulty %q", req.Difficulty)
	}
	return nil
}

// Generate — прямой вызов: весь конвейер от проверки прав до журнала
// использования. Ошибки несут программные коды (клиент предлагает админский
// override именно на resource-exhausted).
func (s *Service) Generate(ctx context.Context, sess Session, req Request) (resp *Response, err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.KindOf(err))
		}
		metrics.QuizGenerations.WithLabelValues(outcome).Inc()
	}()

	if sess.Email == "" {
		return nil, apperr.New(apperr.Unauthenticated, "User must be authenticated to generate quizzes")
	}

	sets, err := db.LoadRoleSets(ctx, s.database)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "failed to load roles", err)
	}
	isAdmin := sets.IsAdmin(sess.Email)
	isTeacher := sets.IsTeacher(sess.Email)
	if !isAdmin && !isTeacher {
		return nil, apperr.New(apperr.PermissionDenied, "Only admin and teachers can generate quizzes")
	}

	if err := s.validate(&req); err != nil {
		return nil, err
	}

	// одна генерация на пользователя за раз
	unlock := s.locks.lock(sess.UserID)
	defer unlock()

	// Скользящее окно 24 часа. Сбой подсчёта лимит не блокирует —
	// как и в исходной системе, логируем и пропускаем.
	rolling, cntErr := db.CountUsageSince(ctx, s.database, s.now().Add(-rollingWindow))
	if cntErr != nil {
		s.log.Warnw("rate limit check failed", "err", cntErr)
		rolling = 0
	}
	metrics.QuizGenRolling.Set(float64(rolling))

	// Учителя не могут обходить лимит — независимо от текущего счётчика.
	if isTeacher && req.OverrideLimit {
		return nil, apperr.Newf(apperr.PermissionDenied,
			"Teachers cannot override the daily limit. Please contact %s if you need more quizzes today.",
			s.rules.PrimaryAdmin)
	}

	if rolling >= s.dailyLimit && !req.OverrideLimit {
		if s.notify != nil {
			s.notify.QuotaExhausted(sess.Email, rolling, s.dailyLimit)
		}
		hint := fmt.Sprintf("Please contact %s to generate more quizzes today.", s.rules.PrimaryAdmin)
		if isAdmin {
			hint = "Admin approval required to continue."
		}
		return nil, apperr.Newf(apperr.ResourceExhausted,
			"Daily limit of %d quiz generations reached (%d generated in last 24 hours). %s",
			s.dailyLimit, rolling, hint)
	}

	s.log.Infow("generating quiz", "book", req.BookTitle, "count", req.QuestionCount,
		"rolling", rolling, "override", req.OverrideLimit, "teacher", isTeacher)

	raw, usage, err := s.gen.Complete(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}
	quiz, err := ParseQuiz(raw, true)
	if err != nil {
		return nil, err
	}

	// Запись учёта — fire-and-forget: ответ пользователю не ждёт журнал,
	// сбой записи только логируется.
	entry := models.UsageLogEntry{
		Timestamp:     s.now().UTC(),
		UserID:        sess.UserID,
		UserEmail:     sess.Email,
		BookTitle:     req.BookTitle,
		Author:        req.Author,
		QuestionCount: len(quiz.Questions),
		Difficulty:    req.Difficulty,
		InputTokens:   usage.InputTokens,
		OutputTokens:  usage.OutputTokens,
		Model:         s.model,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.AddUsageLog(ctx, s.database, entry); err != nil {
			s.log.Errorw("failed to log usage", "err", err)
		}
	}()

	resp = &Response{Success: true, Quiz: quiz, Usage: usage}

	updated := rolling + 1
	if isTeacher && updated >= WarningThreshold {
		resp.Warning = &Warning{
			Message: fmt.Sprintf(
				"You have generated %d out of %d quizzes today. Please contact %s if you need to generate more than %d quizzes in a 24-hour period.",
				updated, s.dailyLimit, s.rules.PrimaryAdmin, s.dailyLimit),
			Count: updated,
			Limit: s.dailyLimit,
		}
		if s.notify != nil {
			s.notify.TeacherWarning(sess.Email, updated, s.dailyLimit)
		}
	}
	return resp, nil
}

// AsyncRequest — заявка асинхронного варианта (квиз по главе книги).
type AsyncRequest struct {
	BookTitle    string            `json:"bookTitle"`
	BookAuthor   string            `json:"bookAuthor,omitempty"`
	Chapter      string            `json:"chapter,omitempty"`
	NumQuestions int               `json:"numQuestions,omitempty"`
	Difficulty   models.Difficulty `json:"difficulty,omitempty"`
}

// Enqueue кладёт заявку в очередь и возвращает её id; обработку выполняет
// фоновый слушатель (см. worker.go).
func (s *Service) Enqueue(ctx context.Context, sess Session, req AsyncRequest) (string, error) {
	if sess.Email == "" {
		return "", apperr.New(apperr.Unauthenticated, "User must be authenticated to generate quizzes")
	}
	direct := Request{BookTitle: req.BookTitle, QuestionCount: req.NumQuestions, Difficulty: req.Difficulty}
	if err := s.validate(&direct); err != nil {
		return "", err
	}

	gr := models.GenRequest{
		ID:           uuid.NewString(),
		UserID:       sess.UserID,
		UserEmail:    sess.Email,
		BookTitle:    req.BookTitle,
		BookAuthor:   req.BookAuthor,
		Chapter:      req.Chapter,
		NumQuestions: direct.QuestionCount,
		Difficulty:   direct.Difficulty,
		CreatedAt:    s.now().UTC(),
	}
	if err := db.EnqueueGenRequest(ctx, s.database, gr); err != nil {
		return "", apperr.Wrap(apperr.Unavailable, "failed to enqueue request", err)
	}
	s.hub.Publish("ai-quiz-requests", gr)
	return gr.ID, nil
}

// PollResult — одноразовое чтение исхода; при completed/error исход
// потребляется (строка удаляется) и публикуется null-событие подписчикам.
func (s *Service) PollResult(ctx context.Context, requestID string) (*models.GenResult, error) {
	res, err := db.GetGenResult(ctx, s.database, requestID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	if err := db.ConsumeGenResult(ctx, s.database, requestID); err != nil {
		// исход уже есть; сбой чистки не делает его невалидным
		s.log.Warnw("failed to consume gen result", "request", requestID, "err", err)
	}
	s.hub.Publish(resultTopic(requestID), nil)
	return res, nil
}

// WaitForResult ждёт исход заявки до WaitTimeout. Повторные события и
// null-уведомление после удаления строки игнорируются; опоздавшая запись
// после таймаута не отменяется, с ней живут.
func (s *Service) WaitForResult(ctx context.Context, requestID string) (*models.GenResult, error) {
	sub := s.hub.Subscribe(resultTopic(requestID))
	defer sub.Cancel()

	// результат мог появиться до подписки
	if res, err := s.PollResult(ctx, requestID); err != nil || res != nil {
		return res, err
	}

	deadline := time.NewTimer(WaitTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(2 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, apperr.New(apperr.Unavailable, "quiz generation timed out")
		case ev := <-sub.C:
			if ev.Payload == nil {
				continue // null после чистки — не новое состояние
			}
			if res, err := s.PollResult(ctx, requestID); err != nil || res != nil {
				return res, err
			}
		case <-tick.C:
			if res, err := s.PollResult(ctx, requestID); err != nil || res != nil {
				return res, err
			}
		}
	}
}

func resultTopic(requestID string) string { return "ai-quiz-results/" + requestID }
