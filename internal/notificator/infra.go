package notificator

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramInfra шлёт алерты в чаты админов
type TelegramInfra struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

func NewTelegramInfra(token string, chatIDs []int64) (*TelegramInfra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init alert bot: %w", err)
	}
	return &TelegramInfra{bot: bot, chatIDs: chatIDs}, nil
}

func (i *TelegramInfra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Ошибка в dreamcatcher\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	)

	for _, chatID := range i.chatIDs {
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			return fmt.Errorf("send alert to %d: %w", chatID, sendErr)
		}
	}
	return nil
}

// LogInfra: когда бот не настроен
type LogInfra struct {
	log *zap.Logger
}

func NewLogInfra(log *zap.Logger) *LogInfra {
	return &LogInfra{log: log}
}

func (i *LogInfra) Notify(_ context.Context, err error, details string) error {
	i.log.Error("alert", zap.Error(err), zap.String("details", details))
	return nil
}
