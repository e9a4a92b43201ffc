package notificator

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of *tgbotapi.BotAPI the infra needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	bot    sender
	admins []int64
}

func NewInfra(token string, admins []int64) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Infra{bot: bot, admins: admins}, nil
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Mission buffer error\n\nError: %v\n\nDetails: %s",
		err,
		details,
	)

	var errs []error
	for _, chatID := range i.admins {
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			errs = append(errs, fmt.Errorf("send to %d: %w", chatID, sendErr))
		}
	}
	return errors.Join(errs...)
}
