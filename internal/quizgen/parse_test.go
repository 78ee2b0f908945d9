package quizgen

import (
	"strings"
	"testing"

	"github.com/hearthside/homeschool-hub/internal/apperr"
)

const goodQuiz = `{
  "title": "Hatchet: Chapter 1",
  "description": "Comprehension check",
  "questions": [
    {"question": "Where is Brian headed?", "options": ["Canada", "Mexico", "Alaska", "Maine"], "correctAnswer": 0},
    {"question": "What does the pilot show Brian?", "options": ["Maps", "Flying basics", "Radio codes", "Snacks"], "correctAnswer": 1},
    {"question": "What does Brian carry?", "options": ["A knife", "A hatchet", "A compass", "A tent"], "correctAnswer": 1}
  ]
}`

func TestParseQuiz_PlainJSON(t *testing.T) {
	quiz, err := ParseQuiz(goodQuiz, true)
	if err != nil {
		t.Fatal(err)
	}
	if quiz.Title != "Hatchet: Chapter 1" || len(quiz.Questions) != 3 {
		t.Fatalf("получили %#v", quiz)
	}
}

func TestParseQuiz_StripsMarkdownFences(t *testing.T) {
	raw := "Here is your quiz:\n```json\n" + goodQuiz + "\n```\nEnjoy!"
	quiz, err := ParseQuiz(raw, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(quiz.Questions) != 3 {
		t.Fatalf("получили %d вопросов", len(quiz.Questions))
	}
}

func TestParseQuiz_NoJSON(t *testing.T) {
	_, err := ParseQuiz("sorry, I cannot help with that", true)
	if !apperr.IsKind(err, apperr.Internal) {
		t.Fatalf("ожидали internal, получили %v", err)
	}
	if !strings.Contains(err.Error(), "no JSON found") {
		t.Fatalf("неожиданное сообщение: %v", err)
	}
}

func TestParseQuiz_MissingTitle(t *testing.T) {
	raw := strings.Replace(goodQuiz, `"title": "Hatchet: Chapter 1",`, "", 1)

	if _, err := ParseQuiz(raw, true); err == nil {
		t.Fatal("прямой вызов требует title")
	}
	// асинхронный вариант собирает title сам
	if _, err := ParseQuiz(raw, false); err != nil {
		t.Fatalf("без requireTitle не должно падать: %v", err)
	}
}

func TestParseQuiz_BadQuestionStructure(t *testing.T) {
	raw := `{"title": "X", "questions": [
	  {"question": "ok?", "options": ["a", "b", "c", "d"], "correctAnswer": 0},
	  {"question": "bad", "options": ["a", "b"], "correctAnswer": 0}
	]}`
	_, err := ParseQuiz(raw, true)
	if err == nil || !strings.Contains(err.Error(), "index 1") {
		t.Fatalf("ожидали ошибку на индексе 1, получили %v", err)
	}
}

func TestParseQuiz_CorrectAnswerOutOfRange(t *testing.T) {
	raw := `{"title": "X", "questions": [
	  {"question": "ok?", "options": ["a", "b", "c", "d"], "correctAnswer": 4}
	]}`
	if _, err := ParseQuiz(raw, true); err == nil {
		t.Fatal("индекс правильного ответа вне [0,3] должен отклоняться")
	}
}

func TestExtractJSON_TakesOuterSpan(t *testing.T) {
	raw := `noise {"a": {"b": 1}} trailing`
	span, ok := extractJSON(raw)
	if !ok || span != `{"a": {"b": 1}}` {
		t.Fatalf("получили %q, ok=%v", span, ok)
	}
}
