package quizgen

import "sync"

// userLimiter предотвращает две одновременные генерации от одного
// пользователя; проверку квоты и вставку лога это не сериализует глобально,
// так что гонка на границе лимита между разными пользователями остаётся.
type userLimiter struct {
	mu   sync.Mutex
	byID map[string]*sync.Mutex
}

func newUserLimiter() *userLimiter {
	return &userLimiter{byID: make(map[string]*sync.Mutex)}
}

func (l *userLimiter) lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.byID[userID]
	if !ok {
		m = &sync.Mutex{}
		l.byID[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func() { m.Unlock() }
}
