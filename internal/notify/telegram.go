// Package notify — алерты админам в Telegram. Канал необязательный: без
// токена возвращается nil, и сервис работает молча.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hearthside/homeschool-hub/internal/observability"
)

type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

func NewTelegram(token string, chatIDs []int64) (*Telegram, error) {
	if token == "" || len(chatIDs) == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chatIDs: chatIDs}, nil
}

// Считаем системными: 5xx, 429, timeout — только такие шлём в Sentry.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "timeout")
}

func (t *Telegram) send(text string) {
	for _, chatID := range t.chatIDs {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil && isSystemErr(err) {
			observability.CaptureErr(err)
		}
	}
}

func (t *Telegram) QuotaExhausted(email string, count, limit int) {
	go t.send(fmt.Sprintf(
		"⛔ Дневной лимит генерации исчерпан: %d/%d за последние 24 часа.\nПоследний запрос: %s. Override доступен только админу.",
		count, limit, email))
}

func (t *Telegram) TeacherWarning(email string, count, limit int) {
	go t.send(fmt.Sprintf(
		"⚠️ Учитель %s сгенерировал %d из %d квизов за сутки.", email, count, limit))
}
