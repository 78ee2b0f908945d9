package models

import "time"

// Question — ровно 4 варианта, индекс правильного в [0,3].
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy   string     `json:"updatedBy,omitempty"`
}

// ValidateQuestions — инварианты вопросов: текст непустой, ровно 4 варианта,
// индекс правильного в [0,3]. Возвращает индекс первого нарушения и false.
func ValidateQuestions(questions []Question) (int, bool) {
	for i, q := range questions {
		if q.Question == "" || len(q.Options) != 4 {
			return i, false
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer > 3 {
			return i, false
		}
	}
	return -1, true
}

// QuizResult — append-only запись попытки; никогда не правится и не удаляется.
type QuizResult struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserEmail  string    `json:"userEmail"`
	QuizID     string    `json:"quizId"`
	QuizTitle  string    `json:"quizTitle"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
	Timestamp  time.Time `json:"timestamp"`
}
