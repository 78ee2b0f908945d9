package models_test

import (
	"testing"

	"github.com/hearthside/homeschool-hub/internal/models"
)

func TestNextReadingStatus_Cycle(t *testing.T) {
	s := models.ReadingAssigned
	seen := []models.ReadingStatus{}
	for i := 0; i < 3; i++ {
		s = models.NextReadingStatus(s)
		seen = append(seen, s)
	}
	want := []models.ReadingStatus{models.ReadingInProcess, models.ReadingCompleted, models.ReadingAssigned}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("шаг %d: %q, ожидали %q", i, seen[i], want[i])
		}
	}
}

func TestValidateQuestions(t *testing.T) {
	good := []models.Question{
		{Question: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
		{Question: "q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3},
	}
	if i, ok := models.ValidateQuestions(good); !ok {
		t.Fatalf("валидные вопросы отклонены на индексе %d", i)
	}

	bad := append(good, models.Question{Question: "q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: -1})
	if i, ok := models.ValidateQuestions(bad); ok || i != 2 {
		t.Fatalf("ожидали отказ на индексе 2, получили i=%d ok=%v", i, ok)
	}
}
