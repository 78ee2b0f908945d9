package db

import (
	"context"
	"database/sql"
	"log"

	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/roles"
)

// EnsureDefaultRoles лениво сеет захардкоженные роли, если хранилище пустое
// (первый запуск либо потерянный узел user-roles).
func EnsureDefaultRoles(ctx context.Context, database *sql.DB, primaryAdmin string) error {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM role_members`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := roles.DefaultSets(primaryAdmin)
	for _, role := range []models.Role{models.RoleAdmin, models.RoleTeacher, models.RoleStudent} {
		for _, email := range defaults.Emails(role) {
			if err := SetRole(ctx, database, email, role); err != nil {
				return err
			}
		}
	}
	log.Println("✅ Роли засеяны дефолтами.")
	return nil
}

// EnsureDefaultCurriculum создаёт учебный план из одного предмета при первом
// заходе админа в пустое хранилище.
func EnsureDefaultCurriculum(ctx context.Context, database *sql.DB) error {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	subject := models.Subject{
		ID:          "reading",
		Title:       "Reading",
		Icon:        "📚",
		Description: "Assigned books and comprehension quizzes",
		Order:       1,
		Enabled:     true,
		Color:       "#4a90d9",
	}
	if err := UpsertSubject(ctx, database, subject); err != nil {
		return err
	}
	return UpsertSection(ctx, database, subject.ID, models.Section{
		ID:      "books",
		Title:   "Books",
		Type:    "reading",
		Order:   1,
		Enabled: true,
	})
}
