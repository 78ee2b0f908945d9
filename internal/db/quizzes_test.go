//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/testutil/testdb"
)

func fourOptions(correct int) models.Question {
	return models.Question{
		Question:      "вопрос?",
		Options:       []string{"а", "б", "в", "г"},
		CorrectAnswer: correct,
	}
}

func TestSaveQuiz_RoundTripKeepsOrder(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	q := models.Quiz{
		Title: "Hatchet: Chapter 1",
		Questions: []models.Question{
			{Question: "первый", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3},
			{Question: "второй", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
			{Question: "третий", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1},
		},
	}
	saved, err := db.SaveQuiz(ctx, h.DB, q, "teacher@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID != "hatchet-chapter-1" {
		t.Fatalf("id из слага: получили %q", saved.ID)
	}
	if saved.CreatedBy != "teacher@example.com" || saved.UpdatedAt != nil {
		t.Fatalf("поля аудита при создании: %#v", saved)
	}

	got, err := db.GetQuiz(ctx, h.DB, saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("квиз не найден после сохранения")
	}
	for i, want := range []string{"первый", "второй", "третий"} {
		if got.Questions[i].Question != want {
			t.Fatalf("порядок вопросов нарушен: позиция %d = %q", i, got.Questions[i].Question)
		}
	}

	// повторное сохранение того же id — patch с updated_at/by
	updated, err := db.SaveQuiz(ctx, h.DB, *got, "admin@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if updated.UpdatedAt == nil || updated.UpdatedBy != "admin@example.com" {
		t.Fatalf("поля аудита при обновлении: %#v", updated)
	}
	if updated.CreatedBy != "teacher@example.com" {
		t.Fatal("created_by не должен меняться при обновлении")
	}
}

func TestSaveQuiz_RejectsBadQuestions(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	cases := []struct {
		name string
		quiz models.Quiz
	}{
		{"без заголовка", models.Quiz{Questions: []models.Question{fourOptions(0)}}},
		{"без вопросов", models.Quiz{Title: "X"}},
		{"три варианта", models.Quiz{Title: "X", Questions: []models.Question{{
			Question: "q", Options: []string{"a", "b", "c"}, CorrectAnswer: 0,
		}}}},
		{"индекс вне диапазона", models.Quiz{Title: "X", Questions: []models.Question{fourOptions(4)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.SaveQuiz(ctx, h.DB, tc.quiz, "t@example.com")
			if !apperr.IsKind(err, apperr.InvalidArgument) {
				t.Fatalf("ожидали invalid-argument, получили %v", err)
			}
		})
	}
}

func TestGetQuizBySuffix(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	q := models.Quiz{Title: "Charlotte's Web: Chapter 3", Questions: []models.Question{fourOptions(1)}}
	saved, err := db.SaveQuiz(ctx, h.DB, q, "t@example.com")
	if err != nil {
		t.Fatal(err)
	}

	got, err := db.GetQuizBySuffix(ctx, h.DB, "chapter-3")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != saved.ID {
		t.Fatalf("поиск по хвосту id: получили %#v", got)
	}

	missing, err := db.GetQuizBySuffix(ctx, h.DB, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatal("несуществующий хвост должен давать nil")
	}

	// метасимволы LIKE в суффиксе — литералы, а не wildcard-ы
	for _, suffix := range []string{"%", "_", "chapter-_", "%3"} {
		wild, err := db.GetQuizBySuffix(ctx, h.DB, suffix)
		if err != nil {
			t.Fatal(err)
		}
		if wild != nil {
			t.Fatalf("суффикс %q сработал как wildcard: %#v", suffix, wild)
		}
	}
}

func TestDeleteQuiz(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	q := models.Quiz{Title: "To Delete", Questions: []models.Question{fourOptions(0)}}
	saved, err := db.SaveQuiz(ctx, h.DB, q, "t@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteQuiz(ctx, h.DB, saved.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteQuiz(ctx, h.DB, saved.ID); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("повторное удаление: ожидали not-found, получили %v", err)
	}
}
