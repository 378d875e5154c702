package gateway

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/finbot/internal/agent"
)

// telegramTextLimit is the longest text Telegram accepts in one message.
const telegramTextLimit = 4096

type TelegramGateway struct {
	Bot     *tgbotapi.BotAPI
	Handler Handler

	stopOnce sync.Once
}

func NewTelegramGateway(token string, handler Handler) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:     bot,
		Handler: handler,
	}, nil
}

func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			tg.Stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

			msg := agent.Message{
				ChatID: strconv.FormatInt(update.Message.Chat.ID, 10),
				Text:   update.Message.Text,
			}
			go func() {
				if err := tg.Handler.Handle(ctx, msg, tg); err != nil {
					log.Printf("Error answering %s: %v", msg.ChatID, err)
				}
			}()
		}
	}
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid chat ID: %s", chatID)
	}
	return id, nil
}

func (tg *TelegramGateway) SendText(ctx context.Context, chatID string, text string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	for _, chunk := range splitMessage(text, telegramTextLimit) {
		msg := tgbotapi.NewMessage(id, chunk)
		msg.ParseMode = "Markdown"
		if _, err := tg.Bot.Send(msg); err != nil {
			// generated text may not be valid Markdown
			msg.ParseMode = ""
			if _, err := tg.Bot.Send(msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tg *TelegramGateway) SendImage(ctx context.Context, chatID string, png []byte, caption string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(id, tgbotapi.FileBytes{Name: "solucion.png", Bytes: png})
	photo.Caption = caption
	_, err = tg.Bot.Send(photo)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.stopOnce.Do(tg.Bot.StopReceivingUpdates)
	return nil
}
