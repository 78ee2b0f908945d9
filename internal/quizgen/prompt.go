package quizgen

import (
	"fmt"
	"strings"

	"github.com/hearthside/homeschool-hub/internal/models"
)

// buildPrompt — промпт прямого вызова; текст повторяет исходный, включая
// требование ровно 4 вариантов и индекс правильного ответа 0-3.
func buildPrompt(req Request) string {
	var b strings.Builder

	byAuthor := ""
	if req.Author != "" {
		byAuthor = fmt.Sprintf(" by %s", req.Author)
	}
	chapterInfo := ""
	if req.Chapters != "" {
		chapterInfo = fmt.Sprintf("\n\nFOCUS ON CHAPTERS: %s\nOnly create questions about content from these specific chapters.", req.Chapters)
	}
	fmt.Fprintf(&b, "Generate a %s level quiz for the book \"%s\"%s suitable for ages 10-11.%s\n\n",
		req.Difficulty, req.BookTitle, byAuthor, chapterInfo)

	if req.Context != "" {
		fmt.Fprintf(&b, "Additional context: %s\n\n", req.Context)
	}
	fmt.Fprintf(&b, "Create exactly %d multiple-choice questions with 4 options each.\n\n", req.QuestionCount)

	b.WriteString("Requirements:\n")
	if req.Chapters != "" {
		fmt.Fprintf(&b, "- Questions should test comprehension of key plot points, characters, and themes from chapters %s\n", req.Chapters)
	} else {
		b.WriteString("- Questions should test comprehension of key plot points, characters, and themes\n")
	}
	b.WriteString("- Make questions engaging and age-appropriate\n")
	b.WriteString("- Ensure each question has exactly 4 options\n")
	b.WriteString("- Mark the correct answer by its index (0-3)\n")
	b.WriteString("- Include a brief, kid-friendly description\n")
	if req.Chapters != "" {
		fmt.Fprintf(&b, "- Only include content from the specified chapters: %s\n", req.Chapters)
	}

	fmt.Fprintf(&b, `
Format your response as valid JSON with this exact structure:
{
  "title": "%s",
  "description": "Test your knowledge of [brief description]",
  "questions": [
    {
      "question": "What is the name of the main character?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": 0
    }
  ]
}

IMPORTANT:
- Return ONLY the JSON object, no other text
- Ensure the JSON is valid and properly formatted
- Include exactly %d questions`, req.BookTitle, req.QuestionCount)

	return b.String()
}

// buildChapterPrompt — промпт асинхронной заявки (квиз по одной главе).
func buildChapterPrompt(req models.GenRequest) string {
	byAuthor := ""
	if req.BookAuthor != "" {
		byAuthor = fmt.Sprintf(" by %s", req.BookAuthor)
	}
	return fmt.Sprintf(`Generate a %s level quiz for the book "%s"%s suitable for ages 10-11.

FOCUS ON: %s
Only create questions about content from this specific chapter or section.

Create exactly %d multiple-choice questions with 4 options each.

Requirements:
- Questions should test comprehension of key plot points, characters, and themes from %s
- Make questions engaging and age-appropriate for 10-11 year olds
- Ensure each question has exactly 4 options
- Mark the correct answer by its index (0-3)
- Only include content from %s

Format your response as valid JSON with this exact structure:
{
  "questions": [
    {
      "question": "What happened in this chapter?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": 0
    }
  ]
}

CRITICAL INSTRUCTIONS:
- You MUST return ONLY valid JSON
- Do NOT include any explanatory text before or after the JSON
- Do NOT wrap the JSON in markdown code blocks
- Do NOT include any commentary
- Start your response with { and end with }
- Include exactly %d questions`,
		req.Difficulty, req.BookTitle, byAuthor, req.Chapter, req.NumQuestions,
		req.Chapter, req.Chapter, req.NumQuestions)
}
