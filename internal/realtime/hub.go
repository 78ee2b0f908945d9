// Package realtime — внутрипроцессный hub live-обновлений. Подписка — явная
// пара start/stop (handle с Cancel), чтобы слушатели не протекали при уходе
// со страницы. Доставка может дублироваться; потребители обязаны быть
// идемпотентны к повтору одного состояния.
package realtime

import (
	"sync"
)

// Event — изменение по пути-топику ("quizzes", "assignments/<uid>", ...).
// Payload nil означает удаление узла; такой сигнал после уже прочитанного
// состояния игнорируется потребителем, а не трактуется как новое состояние.
type Event struct {
	Topic   string
	Payload any
}

type Subscription struct {
	C chan Event

	hub   *Hub
	topic string
	once  sync.Once
}

// Cancel отписывает и закрывает канал. Повторный Cancel безопасен.
func (s *Subscription) Cancel() {
	s.once.Do(func() { s.hub.drop(s) })
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{
		C:     make(chan Event, 16),
		hub:   h,
		topic: topic,
	}
	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish рассылает событие подписчикам топика. Медленный подписчик
// (полный буфер) событие теряет — писатели никогда не блокируются.
func (h *Hub) Publish(topic string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[topic] {
		select {
		case s.C <- Event{Topic: topic, Payload: payload}:
		default:
		}
	}
}

func (h *Hub) drop(s *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.topic)
		}
	}
	h.mu.Unlock()
	close(s.C)
}
