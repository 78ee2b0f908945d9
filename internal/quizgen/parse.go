package quizgen

import (
	"encoding/json"
	"strings"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/models"
)

type parsedQuiz struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []models.Question `json:"questions"`
}

// extractJSON снимает markdown-ограждения и вырезает первый {...}-спан.
// Модель иногда заворачивает ответ в ```json, несмотря на инструкции.
func extractJSON(raw string) (string, bool) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// ParseQuiz превращает сырой текст генератора в квиз. requireTitle — прямой
// вызов требует title в ответе; вариант «по главе» собирает title сам.
func ParseQuiz(raw string, requireTitle bool) (*models.Quiz, error) {
	span, ok := extractJSON(raw)
	if !ok {
		return nil, apperr.New(apperr.Internal, "no JSON found in AI response")
	}

	var p parsedQuiz
	if err := json.Unmarshal([]byte(span), &p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to parse AI response as JSON", err)
	}

	if requireTitle && p.Title == "" {
		return nil, apperr.New(apperr.Internal, "invalid quiz data structure")
	}
	if len(p.Questions) == 0 {
		return nil, apperr.New(apperr.Internal, "invalid quiz data structure")
	}
	if i, ok := models.ValidateQuestions(p.Questions); !ok {
		return nil, apperr.Newf(apperr.Internal, "invalid question structure at index %d", i)
	}

	return &models.Quiz{
		Title:       p.Title,
		Description: p.Description,
		Questions:   p.Questions,
	}, nil
}
