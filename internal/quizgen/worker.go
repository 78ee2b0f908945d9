package quizgen

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
)

// ProcessPending — тело фоновой джобы: разбирает очередь заявок до пустоты.
// Конвейер тот же, что у прямого вызова, начиная с обращения к генератору;
// исход (completed либо error) пишется в ai_quiz_results.
func (s *Service) ProcessPending(ctx context.Context) error {
	for {
		req, err := db.ClaimGenRequest(ctx, s.database)
		if err != nil {
			return err
		}
		if req == nil {
			return nil
		}
		s.processOne(ctx, *req)
	}
}

func (s *Service) processOne(ctx context.Context, req models.GenRequest) {
	s.log.Infow("processing quiz request", "request", req.ID, "book", req.BookTitle, "chapter", req.Chapter)

	res := models.GenResult{
		RequestID: req.ID,
		Timestamp: s.now().UTC(),
	}

	raw, usage, err := s.gen.Complete(ctx, buildChapterPrompt(req))
	var quiz *models.Quiz
	if err == nil {
		quiz, err = ParseQuiz(raw, false)
	}

	if err != nil {
		s.log.Errorw("quiz request failed", "request", req.ID, "err", err)
		res.Status = models.GenError
		res.Error = err.Error()
	} else {
		if quiz.Title == "" {
			quiz.Title = req.BookTitle
			if req.Chapter != "" {
				quiz.Title = fmt.Sprintf("%s: %s", req.BookTitle, req.Chapter)
			}
		}
		res.Status = models.GenCompleted
		res.Quiz = quiz
		res.InputTokens = usage.InputTokens
		res.OutputTokens = usage.OutputTokens

		// в отличие от прямого вызова, здесь журнал пишется до ответа
		entry := models.UsageLogEntry{
			Timestamp:     s.now().UTC(),
			UserID:        req.UserID,
			UserEmail:     req.UserEmail,
			BookTitle:     req.BookTitle,
			Author:        req.BookAuthor,
			QuestionCount: len(quiz.Questions),
			Difficulty:    req.Difficulty,
			InputTokens:   usage.InputTokens,
			OutputTokens:  usage.OutputTokens,
			Model:         s.model,
		}
		if err := db.AddUsageLog(ctx, s.database, entry); err != nil {
			s.log.Errorw("failed to log usage", "request", req.ID, "err", err)
		}
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.WriteGenResult(writeCtx, s.database, res); err != nil {
		s.log.Errorw("failed to write gen result", "request", req.ID, "err", err)
		return
	}
	s.hub.Publish(resultTopic(req.ID), &res)
}

// PurgeStale — джоба чистки брошенных строк очереди.
func (s *Service) PurgeStale(ctx context.Context) error {
	n, err := db.PurgeStaleGenRows(ctx, s.database, s.now().Add(-time.Hour))
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Infow("purged stale gen rows", "rows", n)
	}
	return nil
}
