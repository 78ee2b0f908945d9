package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/hearthside/homeschool-hub/internal/models"
)

// EnqueueGenRequest кладёт заявку в транзитную очередь ai_quiz_requests.
func EnqueueGenRequest(ctx context.Context, database *sql.DB, req models.GenRequest) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO ai_quiz_requests
    (id, user_id, user_email, book_title, book_author, chapter, num_questions, difficulty, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)`,
		req.ID, req.UserID, req.UserEmail, req.BookTitle, req.BookAuthor, req.Chapter,
		req.NumQuestions, string(req.Difficulty), req.CreatedAt)
	return err
}

// ClaimGenRequest забирает одну pending-заявку. SKIP LOCKED — слушатель
// может работать на любом экземпляре сервера, заявку получает ровно один.
func ClaimGenRequest(ctx context.Context, database *sql.DB) (*models.GenRequest, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var req models.GenRequest
	var difficulty string
	err = tx.QueryRowContext(ctx, `
SELECT id, user_id, user_email, book_title, book_author, chapter, num_questions, difficulty, created_at
FROM ai_quiz_requests
WHERE status = 'pending'
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED`).
		Scan(&req.ID, &req.UserID, &req.UserEmail, &req.BookTitle, &req.BookAuthor,
			&req.Chapter, &req.NumQuestions, &difficulty, &req.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	req.Difficulty = models.Difficulty(difficulty)

	if _, err := tx.ExecContext(ctx,
		`UPDATE ai_quiz_requests SET status = 'processing' WHERE id = $1`, req.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &req, nil
}

// WriteGenResult записывает исход и удаляет обработанную заявку.
func WriteGenResult(ctx context.Context, database *sql.DB, res models.GenResult) error {
	var quiz []byte
	if res.Quiz != nil {
		var err error
		quiz, err = json.Marshal(res.Quiz)
		if err != nil {
			return err
		}
	}
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO ai_quiz_results (request_id, status, quiz, error, input_tokens, output_tokens, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (request_id) DO UPDATE
SET status = excluded.status,
    quiz = excluded.quiz,
    error = excluded.error,
    input_tokens = excluded.input_tokens,
    output_tokens = excluded.output_tokens`,
		res.RequestID, string(res.Status), quiz, res.Error, res.InputTokens, res.OutputTokens, res.Timestamp); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ai_quiz_requests WHERE id = $1`, res.RequestID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetGenResult — nil, если исхода ещё нет (клиент продолжает ждать).
func GetGenResult(ctx context.Context, database *sql.DB, requestID string) (*models.GenResult, error) {
	var res models.GenResult
	var status string
	var quiz []byte
	err := database.QueryRowContext(ctx, `
SELECT request_id, status, quiz, error, input_tokens, output_tokens, created_at
FROM ai_quiz_results WHERE request_id = $1`, requestID).
		Scan(&res.RequestID, &status, &quiz, &res.Error, &res.InputTokens, &res.OutputTokens, &res.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res.Status = models.GenStatus(status)
	if len(quiz) > 0 {
		res.Quiz = &models.Quiz{}
		if err := json.Unmarshal(quiz, res.Quiz); err != nil {
			return nil, err
		}
	}
	return &res, nil
}

// ConsumeGenResult удаляет прочитанный исход; очередь — не аудит,
// для учёта остаются только ai_usage_logs.
func ConsumeGenResult(ctx context.Context, database *sql.DB, requestID string) error {
	_, err := database.ExecContext(ctx,
		`DELETE FROM ai_quiz_results WHERE request_id = $1`, requestID)
	return err
}

// PurgeStaleGenRows чистит брошенные заявки и непрочитанные исходы;
// исходная система их просто копила.
func PurgeStaleGenRows(ctx context.Context, database *sql.DB, olderThan time.Time) (int64, error) {
	var total int64
	res, err := database.ExecContext(ctx,
		`DELETE FROM ai_quiz_requests WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}
	res, err = database.ExecContext(ctx,
		`DELETE FROM ai_quiz_results WHERE created_at < $1`, olderThan)
	if err != nil {
		return total, err
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}
	return total, nil
}
