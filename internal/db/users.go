package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hearthside/homeschool-hub/internal/models"
)

// EnsureUser — upsert профиля при входе: первый вход создаёт запись и
// выдаёт id, повторный — обновляет изменяемые поля и last_login_at.
func EnsureUser(ctx context.Context, database *sql.DB, email, name, avatarURL string, isAdmin bool) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()

	var u models.User
	err := database.QueryRowContext(ctx, `
INSERT INTO users (id, email, name, avatar_url, is_admin, created_at, last_login_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (email) DO UPDATE
SET name = excluded.name,
    avatar_url = excluded.avatar_url,
    is_admin = excluded.is_admin,
    last_login_at = excluded.last_login_at
RETURNING id, email, name, avatar_url, is_admin, created_at, last_login_at`,
		uuid.NewString(), email, name, avatarURL, isAdmin, now).
		Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.IsAdmin, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, database *sql.DB, id string) (*models.User, error) {
	return scanUser(database.QueryRowContext(ctx, `
SELECT id, email, name, avatar_url, is_admin, created_at, last_login_at
FROM users WHERE id = $1`, id))
}

func GetUserByEmail(ctx context.Context, database *sql.DB, email string) (*models.User, error) {
	return scanUser(database.QueryRowContext(ctx, `
SELECT id, email, name, avatar_url, is_admin, created_at, last_login_at
FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.IsAdmin, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func ListUsers(ctx context.Context, database *sql.DB) ([]models.User, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, email, name, avatar_url, is_admin, created_at, last_login_at
FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.IsAdmin, &u.CreatedAt, &u.LastLoginAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListStudents собирает список учеников по ролевому множеству: у кого есть
// профиль — с id, у остальных запись «pending» (ни разу не входил, назначать
// нельзя).
func ListStudents(ctx context.Context, database *sql.DB, studentEmails []string) ([]models.Student, error) {
	byEmail := make(map[string]models.User)
	rows, err := database.QueryContext(ctx, `
SELECT id, email, name FROM users WHERE email = ANY($1)`, studentEmails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			return nil, err
		}
		byEmail[u.Email] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	students := make([]models.Student, 0, len(studentEmails))
	for _, email := range studentEmails {
		if u, ok := byEmail[email]; ok {
			students = append(students, models.Student{UserID: u.ID, Email: u.Email, Name: u.Name})
			continue
		}
		students = append(students, models.Student{
			UserID:  "pending-" + email,
			Email:   email,
			Name:    email,
			Pending: true,
		})
	}
	return students, nil
}
