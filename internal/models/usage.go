package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// UsageLogEntry — append-only учёт генераций; по нему считается скользящее
// окно 24 часа для дневного лимита.
type UsageLogEntry struct {
	ID            int64      `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	UserID        string     `json:"userId"`
	UserEmail     string     `json:"userEmail"`
	BookTitle     string     `json:"bookTitle"`
	Author        string     `json:"author,omitempty"`
	QuestionCount int        `json:"questionCount"`
	Difficulty    Difficulty `json:"difficulty"`
	InputTokens   int        `json:"inputTokens"`
	OutputTokens  int        `json:"outputTokens"`
	Model         string     `json:"model"`
}

// Статусы записи в ai_quiz_results.
type GenStatus string

const (
	GenPending   GenStatus = "pending"
	GenCompleted GenStatus = "completed"
	GenError     GenStatus = "error"
)

// GenRequest — заявка в очереди асинхронной генерации (ai_quiz_requests).
type GenRequest struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	UserEmail    string     `json:"userEmail"`
	BookTitle    string     `json:"bookTitle"`
	BookAuthor   string     `json:"bookAuthor,omitempty"`
	Chapter      string     `json:"chapter,omitempty"`
	NumQuestions int        `json:"numQuestions"`
	Difficulty   Difficulty `json:"difficulty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// GenResult — исход заявки (ai_quiz_results); удаляется после прочтения.
type GenResult struct {
	RequestID    string    `json:"requestId"`
	Status       GenStatus `json:"status"`
	Quiz         *Quiz     `json:"quiz,omitempty"`
	Error        string    `json:"error,omitempty"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	Timestamp    time.Time `json:"timestamp"`
}
