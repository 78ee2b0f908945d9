// Package progress — сборка «назначенных квизов» ученика: join назначений
// с документами квизов, лучший результат и производный статус.
package progress

import (
	"github.com/hearthside/homeschool-hub/internal/models"
)

// SuccessCutoff — общий порог «успеха» (процент); он же используется для
// подсветки статусов чтения.
const SuccessCutoff = 80

// Best возвращает лучший (максимальный процент) результат среди попыток;
// nil, если попыток не было.
func Best(results []models.QuizResult) *models.QuizResult {
	var best *models.QuizResult
	for i := range results {
		if best == nil || results[i].Percentage > best.Percentage {
			best = &results[i]
		}
	}
	return best
}

// Status — производный статус по попыткам: нет результатов — not-started,
// лучший процент >= SuccessCutoff — completed, иначе in-progress.
func Status(results []models.QuizResult) models.QuizStatus {
	best := Best(results)
	switch {
	case best == nil:
		return models.QuizNotStarted
	case best.Percentage >= SuccessCutoff:
		return models.QuizCompleted
	default:
		return models.QuizInProgress
	}
}

// AssignedQuizzes декорирует назначения ученика прогрессом. Квизы,
// на которые ссылается назначение, но которых уже нет в хранилище
// (жёсткое удаление без каскада), молча пропускаются.
func AssignedQuizzes(assignments []models.QuizAssignment, quizzes []models.Quiz, results []models.QuizResult) []models.AssignedQuiz {
	byID := make(map[string]models.Quiz, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
	}
	byQuiz := make(map[string][]models.QuizResult)
	for _, r := range results {
		byQuiz[r.QuizID] = append(byQuiz[r.QuizID], r)
	}

	out := make([]models.AssignedQuiz, 0, len(assignments))
	for _, a := range assignments {
		quiz, ok := byID[a.QuizID]
		if !ok {
			continue // висячая ссылка после удаления квиза
		}
		attempts := byQuiz[a.QuizID]
		aq := models.AssignedQuiz{
			Quiz:         quiz,
			AssignedDate: a.AssignedDate,
			AssignedBy:   a.AssignedBy,
			Attempts:     len(attempts),
			Status:       Status(attempts),
		}
		if best := Best(attempts); best != nil {
			aq.BestPercentage = best.Percentage
		}
		out = append(out, aq)
	}
	return out
}

// AverageScore — среднее процентов по всем попыткам (для статистики);
// 0 при пустом списке.
func AverageScore(results []models.QuizResult) int {
	if len(results) == 0 {
		return 0
	}
	sum := 0
	for _, r := range results {
		sum += r.Percentage
	}
	return sum / len(results)
}
