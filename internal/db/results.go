package db

import (
	"context"
	"database/sql"

	"github.com/hearthside/homeschool-hub/internal/models"
)

// AddResult — только вставка; результаты не правятся и не удаляются.
func AddResult(ctx context.Context, database *sql.DB, r models.QuizResult) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
INSERT INTO quiz_results (user_id, user_name, user_email, quiz_id, quiz_title, score, total, percentage, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`,
		r.UserID, r.UserName, r.UserEmail, r.QuizID, r.QuizTitle, r.Score, r.Total, r.Percentage, r.Timestamp).
		Scan(&id)
	return id, err
}

func ListResultsByUser(ctx context.Context, database *sql.DB, userID string) ([]models.QuizResult, error) {
	return queryResults(ctx, database, `
SELECT id, user_id, user_name, user_email, quiz_id, quiz_title, score, total, percentage, created_at
FROM quiz_results WHERE user_id = $1 ORDER BY created_at`, userID)
}

func ListAllResults(ctx context.Context, database *sql.DB) ([]models.QuizResult, error) {
	return queryResults(ctx, database, `
SELECT id, user_id, user_name, user_email, quiz_id, quiz_title, score, total, percentage, created_at
FROM quiz_results ORDER BY created_at`)
}

func queryResults(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.QuizResult, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuizResult
	for rows.Next() {
		var r models.QuizResult
		if err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.UserEmail, &r.QuizID, &r.QuizTitle,
			&r.Score, &r.Total, &r.Percentage, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
