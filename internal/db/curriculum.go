package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hearthside/homeschool-hub/internal/models"
)

func ListSubjects(ctx context.Context, database *sql.DB) ([]models.Subject, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, title, icon, description, sort_order, enabled, color
FROM subjects ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Title, &s.Icon, &s.Description, &s.Order, &s.Enabled, &s.Color); err != nil {
			return nil, err
		}
		s.Sections = []models.Section{}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	secRows, err := database.QueryContext(ctx, `
SELECT subject_id, id, title, description, type, sort_order, enabled, item_count
FROM sections ORDER BY subject_id, sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer secRows.Close()

	idx := make(map[string]int, len(subjects))
	for i, s := range subjects {
		idx[s.ID] = i
	}
	for secRows.Next() {
		var subjectID string
		var sec models.Section
		if err := secRows.Scan(&subjectID, &sec.ID, &sec.Title, &sec.Description, &sec.Type, &sec.Order, &sec.Enabled, &sec.ItemCount); err != nil {
			return nil, err
		}
		if i, ok := idx[subjectID]; ok {
			subjects[i].Sections = append(subjects[i].Sections, sec)
		}
	}
	return subjects, secRows.Err()
}

func GetSubject(ctx context.Context, database *sql.DB, id string) (*models.Subject, error) {
	var s models.Subject
	err := database.QueryRowContext(ctx, `
SELECT id, title, icon, description, sort_order, enabled, color
FROM subjects WHERE id = $1`, id).
		Scan(&s.ID, &s.Title, &s.Icon, &s.Description, &s.Order, &s.Enabled, &s.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Sections = []models.Section{}

	rows, err := database.QueryContext(ctx, `
SELECT id, title, description, type, sort_order, enabled, item_count
FROM sections WHERE subject_id = $1 ORDER BY sort_order, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sec models.Section
		if err := rows.Scan(&sec.ID, &sec.Title, &sec.Description, &sec.Type, &sec.Order, &sec.Enabled, &sec.ItemCount); err != nil {
			return nil, err
		}
		s.Sections = append(s.Sections, sec)
	}
	return &s, rows.Err()
}

func UpsertSubject(ctx context.Context, database *sql.DB, s models.Subject) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO subjects (id, title, icon, description, sort_order, enabled, color)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET title = excluded.title,
    icon = excluded.icon,
    description = excluded.description,
    sort_order = excluded.sort_order,
    enabled = excluded.enabled,
    color = excluded.color`,
		s.ID, s.Title, s.Icon, s.Description, s.Order, s.Enabled, s.Color)
	return err
}

func DeleteSubject(ctx context.Context, database *sql.DB, id string) error {
	_, err := database.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	return err
}

func UpsertSection(ctx context.Context, database *sql.DB, subjectID string, sec models.Section) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO sections (subject_id, id, title, description, type, sort_order, enabled, item_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (subject_id, id) DO UPDATE
SET title = excluded.title,
    description = excluded.description,
    type = excluded.type,
    sort_order = excluded.sort_order,
    enabled = excluded.enabled,
    item_count = excluded.item_count`,
		subjectID, sec.ID, sec.Title, sec.Description, sec.Type, sec.Order, sec.Enabled, sec.ItemCount)
	return err
}

func DeleteSection(ctx context.Context, database *sql.DB, subjectID, sectionID string) error {
	_, err := database.ExecContext(ctx,
		`DELETE FROM sections WHERE subject_id = $1 AND id = $2`, subjectID, sectionID)
	return err
}

// SetSectionsEnabled — пакетное переключение флагов одной транзакцией:
// либо применяются все пути, либо ни один.
func SetSectionsEnabled(ctx context.Context, database *sql.DB, subjectID string, updates map[string]bool) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for sectionID, enabled := range updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sections SET enabled = $3 WHERE subject_id = $1 AND id = $2`,
			subjectID, sectionID, enabled); err != nil {
			return err
		}
	}
	return tx.Commit()
}
