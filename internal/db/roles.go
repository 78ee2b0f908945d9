package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/roles"
)

// LoadRoleSets читает role_members целиком. Пустая таблица — не ошибка:
// дефолты досеиваются в EnsureDefaultRoles.
func LoadRoleSets(ctx context.Context, database *sql.DB) (roles.Sets, error) {
	rows, err := database.QueryContext(ctx, `SELECT email, role FROM role_members`)
	if err != nil {
		return roles.Sets{}, err
	}
	defer rows.Close()

	s := roles.NewSets()
	for rows.Next() {
		var email, role string
		if err := rows.Scan(&email, &role); err != nil {
			return roles.Sets{}, err
		}
		s.Put(email, models.Role(role))
	}
	return s, rows.Err()
}

// SetRole добавляет email в роль; если email уже состоял в другой роли —
// членство переносится (email может быть только в одном множестве).
func SetRole(ctx context.Context, database *sql.DB, email string, role models.Role) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO role_members (email, role)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET role = excluded.role`,
		strings.ToLower(strings.TrimSpace(email)), string(role))
	return err
}

// RemoveRole удаляет членство. Проверки защищённых удалений (супер-админ,
// последний админ) выполняет слой правил до вызова.
func RemoveRole(ctx context.Context, database *sql.DB, email string, role models.Role) error {
	res, err := database.ExecContext(ctx,
		`DELETE FROM role_members WHERE email = $1 AND role = $2`,
		strings.ToLower(strings.TrimSpace(email)), string(role))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
