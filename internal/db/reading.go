package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/models"
)

// AssignBook назначает книгу N ученикам одной транзакцией (как AssignQuiz).
func AssignBook(ctx context.Context, database *sql.DB, book models.Book, userIDs []string, by string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO reading_assignments
    (user_id, book_id, title, author, isbn, cover_url, page_count, assigned_date, assigned_by, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'assigned')
ON CONFLICT (user_id, book_id) DO UPDATE
SET assigned_date = excluded.assigned_date,
    assigned_by = excluded.assigned_by`,
			uid, book.ID, book.Title, book.Author, book.ISBN, book.CoverImage, book.PageCount, now, by); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func ListReading(ctx context.Context, database *sql.DB, userID string) ([]models.ReadingAssignment, error) {
	rows, err := database.QueryContext(ctx, `
SELECT user_id, book_id, title, author, isbn, cover_url, page_count, assigned_date, assigned_by, status
FROM reading_assignments WHERE user_id = $1 ORDER BY assigned_date`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReadingAssignment
	for rows.Next() {
		var ra models.ReadingAssignment
		if err := rows.Scan(&ra.UserID, &ra.Book.ID, &ra.Book.Title, &ra.Book.Author, &ra.Book.ISBN,
			&ra.Book.CoverImage, &ra.Book.PageCount, &ra.AssignedDate, &ra.AssignedBy, &ra.Status); err != nil {
			return nil, err
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}

// CycleReadingStatus — клик ученика двигает статус по кольцу
// assigned → reading → completed → assigned; три клика возвращают исходный.
func CycleReadingStatus(ctx context.Context, database *sql.DB, userID, bookID string) (models.ReadingStatus, error) {
	var status models.ReadingStatus
	err := database.QueryRowContext(ctx, `
UPDATE reading_assignments
SET status = CASE status
    WHEN 'assigned' THEN 'reading'
    WHEN 'reading' THEN 'completed'
    ELSE 'assigned'
END
WHERE user_id = $1 AND book_id = $2
RETURNING status`, userID, bookID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.Newf(apperr.NotFound, "reading assignment %s/%s not found", userID, bookID)
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

func DeleteReadingAssignment(ctx context.Context, database *sql.DB, userID, bookID string) error {
	_, err := database.ExecContext(ctx,
		`DELETE FROM reading_assignments WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	return err
}
