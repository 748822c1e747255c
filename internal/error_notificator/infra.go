package error_notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender — часть tgbotapi.BotAPI, которой достаточно для отправки алертов.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	bot    Sender
	chatID int64
}

func NewInfra(bot Sender, chatID int64) *Infra {
	return &Infra{bot: bot, chatID: chatID}
}

// NewTelegramInfra поднимает бота по токену. Пустой токен — нотификации выключены (nil, nil).
func NewTelegramInfra(token string, chatID int64) (*Infra, error) {
	if token == "" || chatID == 0 {
		log.Println("[error_notificator] telegram token or chat id is empty, notifications disabled")
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	log.Printf("[error_notificator] started: @%s", bot.Self.UserName)
	return NewInfra(bot, chatID), nil
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	if i == nil {
		return nil
	}

	text := fmt.Sprintf(
		"❗ voice relay error\n\nError: %v\n\nDetails: %s",
		err,
		details,
	)

	msg := tgbotapi.NewMessage(i.chatID, text)

	_, sendErr := i.bot.Send(msg)
	if sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}

	return nil
}
