package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hearthside/homeschool-hub/internal/models"
)

// AddUsageLog — append-only учёт; запись идёт после успешной генерации и
// сознательно не в одной транзакции с проверкой лимита (см. CountUsageSince).
func AddUsageLog(ctx context.Context, database *sql.DB, e models.UsageLogEntry) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO ai_usage_logs
    (created_at, user_id, user_email, book_title, author, question_count, difficulty, input_tokens, output_tokens, model)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.Timestamp, e.UserID, e.UserEmail, e.BookTitle, e.Author, e.QuestionCount,
		string(e.Difficulty), e.InputTokens, e.OutputTokens, e.Model)
	return err
}

// CountUsageSince — размер скользящего окна. Чтение не транзакционно
// относительно будущей вставки: два запроса на границе квоты могут пройти
// оба. Это принятая гонка исходной системы, не предмет для «починки».
func CountUsageSince(ctx context.Context, database *sql.DB, since time.Time) (int, error) {
	var n int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ai_usage_logs WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}
