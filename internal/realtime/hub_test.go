package realtime_test

import (
	"testing"
	"time"

	"github.com/hearthside/homeschool-hub/internal/realtime"
)

func recv(t *testing.T, c chan realtime.Event) realtime.Event {
	t.Helper()
	select {
	case e := <-c:
		return e
	case <-time.After(time.Second):
		t.Fatal("событие не пришло")
		return realtime.Event{}
	}
}

func TestHub_DeliversToTopicSubscribers(t *testing.T) {
	h := realtime.NewHub()
	sub := h.Subscribe("quizzes")
	defer sub.Cancel()
	other := h.Subscribe("assignments/u1")
	defer other.Cancel()

	h.Publish("quizzes", "hatchet-chapter-1")

	e := recv(t, sub.C)
	if e.Topic != "quizzes" || e.Payload != "hatchet-chapter-1" {
		t.Fatalf("получили %#v", e)
	}
	select {
	case e := <-other.C:
		t.Fatalf("чужой топик получил событие %#v", e)
	default:
	}
}

func TestHub_CancelStopsDelivery(t *testing.T) {
	h := realtime.NewHub()
	sub := h.Subscribe("quizzes")
	sub.Cancel()
	sub.Cancel() // повторный Cancel безопасен

	if _, ok := <-sub.C; ok {
		t.Fatal("канал должен быть закрыт")
	}
	// публикация после отписки не паникует
	h.Publish("quizzes", nil)
}

func TestHub_SlowSubscriberDropsNotBlocks(t *testing.T) {
	h := realtime.NewHub()
	sub := h.Subscribe("results/u1")
	defer sub.Cancel()

	done := make(chan struct{})
	go func() {
		// буфер 16 — публикуем с запасом, писатель не должен заблокироваться
		for i := 0; i < 100; i++ {
			h.Publish("results/u1", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish заблокировался на медленном подписчике")
	}
}

func TestHub_NilPayloadDelivered(t *testing.T) {
	h := realtime.NewHub()
	sub := h.Subscribe("ai-quiz-results/r1")
	defer sub.Cancel()

	h.Publish("ai-quiz-results/r1", nil)
	if e := recv(t, sub.C); e.Payload != nil {
		t.Fatalf("получили %#v", e)
	}
}
