package models

import "time"

// QuizAssignment — ключ (uid, quizId); существование записи = «назначено».
type QuizAssignment struct {
	UserID       string    `json:"userId"`
	QuizID       string    `json:"quizId"`
	AssignedDate time.Time `json:"assignedDate"`
	AssignedBy   string    `json:"assignedBy"`
}

// Статусы книжного задания; по клику ученика статус идёт по кольцу
// assigned → reading → completed → assigned.
type ReadingStatus string

const (
	ReadingAssigned  ReadingStatus = "assigned"
	ReadingInProcess ReadingStatus = "reading"
	ReadingCompleted ReadingStatus = "completed"
)

// NextReadingStatus — следующий статус в кольце.
func NextReadingStatus(s ReadingStatus) ReadingStatus {
	switch s {
	case ReadingAssigned:
		return ReadingInProcess
	case ReadingInProcess:
		return ReadingCompleted
	default:
		return ReadingAssigned
	}
}

type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	ISBN       string `json:"isbn,omitempty"`
	CoverImage string `json:"coverImage,omitempty"`
	PageCount  int    `json:"pageCount,omitempty"`
}

type ReadingAssignment struct {
	UserID       string        `json:"userId"`
	Book         Book          `json:"book"`
	AssignedDate time.Time     `json:"assignedDate"`
	AssignedBy   string        `json:"assignedBy"`
	Status       ReadingStatus `json:"status"`
}

// Производный статус квиза по лучшему результату (порог successCutoff = 80).
type QuizStatus string

const (
	QuizNotStarted QuizStatus = "not-started"
	QuizInProgress QuizStatus = "in-progress"
	QuizCompleted  QuizStatus = "completed"
)

// AssignedQuiz — назначенный квиз, декорированный прогрессом ученика.
type AssignedQuiz struct {
	Quiz           Quiz       `json:"quiz"`
	AssignedDate   time.Time  `json:"assignedDate"`
	AssignedBy     string     `json:"assignedBy"`
	Attempts       int        `json:"attempts"`
	BestPercentage int        `json:"bestPercentage"`
	Status         QuizStatus `json:"status"`
}
