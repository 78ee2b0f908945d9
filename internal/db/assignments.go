package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hearthside/homeschool-hub/internal/models"
)

// AssignQuiz назначает квиз сразу N ученикам одной транзакцией: либо все
// пути записаны, либо ни одного (частичный успех не различается).
func AssignQuiz(ctx context.Context, database *sql.DB, quizID string, userIDs []string, by string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO quiz_assignments (user_id, quiz_id, assigned_date, assigned_by)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, quiz_id) DO UPDATE
SET assigned_date = excluded.assigned_date,
    assigned_by = excluded.assigned_by`,
			uid, quizID, now, by); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UnassignQuiz — отсутствие записи и есть «не назначено».
func UnassignQuiz(ctx context.Context, database *sql.DB, userID, quizID string) error {
	_, err := database.ExecContext(ctx,
		`DELETE FROM quiz_assignments WHERE user_id = $1 AND quiz_id = $2`, userID, quizID)
	return err
}

func ListAssignments(ctx context.Context, database *sql.DB, userID string) ([]models.QuizAssignment, error) {
	rows, err := database.QueryContext(ctx, `
SELECT user_id, quiz_id, assigned_date, assigned_by
FROM quiz_assignments WHERE user_id = $1 ORDER BY assigned_date`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuizAssignment
	for rows.Next() {
		var a models.QuizAssignment
		if err := rows.Scan(&a.UserID, &a.QuizID, &a.AssignedDate, &a.AssignedBy); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAssignedUserIDs — кто уже получил этот квиз (для галочек на странице
// назначения).
func ListAssignedUserIDs(ctx context.Context, database *sql.DB, quizID string) ([]string, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT user_id FROM quiz_assignments WHERE quiz_id = $1 ORDER BY user_id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}
