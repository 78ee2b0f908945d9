package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/models"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify — id из заголовка: нижний регистр, всё кроме [a-z0-9] в дефисы.
func Slugify(title string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// SaveQuiz — upsert: существующий id — patch полей + updatedAt/By, иначе
// новая запись с id из слага заголовка и createdAt/By. Перед записью
// проверяются инварианты квиза.
func SaveQuiz(ctx context.Context, database *sql.DB, q models.Quiz, by string) (models.Quiz, error) {
	if strings.TrimSpace(q.Title) == "" {
		return models.Quiz{}, apperr.New(apperr.InvalidArgument, "quiz title is required")
	}
	if len(q.Questions) == 0 {
		return models.Quiz{}, apperr.New(apperr.InvalidArgument, "quiz must have at least 1 question")
	}
	if i, ok := models.ValidateQuestions(q.Questions); !ok {
		return models.Quiz{}, apperr.Newf(apperr.InvalidArgument, "invalid question structure at index %d", i)
	}
	if q.ID == "" {
		q.ID = Slugify(q.Title)
	}
	if q.ID == "" {
		return models.Quiz{}, apperr.New(apperr.InvalidArgument, "quiz id is empty after slugify")
	}

	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return models.Quiz{}, err
	}
	now := time.Now().UTC()

	var updatedAt sql.NullTime
	var updatedBy string
	err = database.QueryRowContext(ctx, `
INSERT INTO quizzes (id, title, description, questions, created_at, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET title = excluded.title,
    description = excluded.description,
    questions = excluded.questions,
    updated_at = $5,
    updated_by = $6
RETURNING created_at, created_by, updated_at, updated_by`,
		q.ID, q.Title, q.Description, questions, now, by).
		Scan(&q.CreatedAt, &q.CreatedBy, &updatedAt, &updatedBy)
	if err != nil {
		return models.Quiz{}, err
	}
	if updatedAt.Valid {
		q.UpdatedAt = &updatedAt.Time
		q.UpdatedBy = updatedBy
	}
	return q, nil
}

func GetQuiz(ctx context.Context, database *sql.DB, id string) (*models.Quiz, error) {
	return scanQuiz(database.QueryRowContext(ctx, `
SELECT id, title, description, questions, created_at, created_by, updated_at, updated_by
FROM quizzes WHERE id = $1`, id))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GetQuizBySuffix — поиск по хвостовому сегменту составного id
// {subjectId}-{sectionId}-{suffix}; нужен для deep-link на один квиз.
// Суффикс — литерал, метасимволы LIKE экранируются.
func GetQuizBySuffix(ctx context.Context, database *sql.DB, suffix string) (*models.Quiz, error) {
	return scanQuiz(database.QueryRowContext(ctx, `
SELECT id, title, description, questions, created_at, created_by, updated_at, updated_by
FROM quizzes
WHERE id = $1 OR id LIKE '%-' || $2
ORDER BY id LIMIT 1`, suffix, likeEscaper.Replace(suffix)))
}

func scanQuiz(row *sql.Row) (*models.Quiz, error) {
	var q models.Quiz
	var questions []byte
	var updatedAt sql.NullTime
	err := row.Scan(&q.ID, &q.Title, &q.Description, &questions, &q.CreatedAt, &q.CreatedBy, &updatedAt, &q.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		q.UpdatedAt = &updatedAt.Time
	}
	return &q, nil
}

func ListQuizzes(ctx context.Context, database *sql.DB) ([]models.Quiz, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, title, description, questions, created_at, created_by, updated_at, updated_by
FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var q models.Quiz
		var questions []byte
		var updatedAt sql.NullTime
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &questions, &q.CreatedAt, &q.CreatedBy, &updatedAt, &q.UpdatedBy); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(questions, &q.Questions); err != nil {
			return nil, err
		}
		if updatedAt.Valid {
			q.UpdatedAt = &updatedAt.Time
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// DeleteQuiz — жёсткое удаление только документа квиза. Назначения и
// результаты со ссылкой на id сознательно не каскадятся: чтение обязано
// пропускать висячие ссылки.
func DeleteQuiz(ctx context.Context, database *sql.DB, id string) error {
	res, err := database.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.NotFound, "quiz %q not found", id)
	}
	return nil
}
