package gateway

import (
	"bytes"
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/rahul/finbot/internal/agent"
)

// discordTextLimit is the longest content Discord accepts in one message.
const discordTextLimit = 2000

type DiscordGateway struct {
	Session *discordgo.Session
	Handler Handler

	ctx context.Context
}

func NewDiscordGateway(token string, handler Handler) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	dg := &DiscordGateway{Session: session, Handler: handler, ctx: context.Background()}
	session.AddHandler(dg.onMessage)
	return dg, nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	msg := agent.Message{ChatID: m.ChannelID, Text: m.Content}
	go func() {
		if err := dg.Handler.Handle(dg.ctx, msg, dg); err != nil {
			log.Printf("Error answering %s: %v", msg.ChatID, err)
		}
	}()
}

func (dg *DiscordGateway) Start(ctx context.Context) error {
	dg.ctx = ctx
	if err := dg.Session.Open(); err != nil {
		return err
	}
	log.Printf("Discord gateway connected")

	<-ctx.Done()
	return dg.Stop()
}

func (dg *DiscordGateway) SendText(ctx context.Context, chatID string, text string) error {
	for _, chunk := range splitMessage(text, discordTextLimit) {
		if _, err := dg.Session.ChannelMessageSend(chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (dg *DiscordGateway) SendImage(ctx context.Context, chatID string, png []byte, caption string) error {
	_, err := dg.Session.ChannelMessageSendComplex(chatID, &discordgo.MessageSend{
		Content: caption,
		Files: []*discordgo.File{{
			Name:        "solucion.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}},
	})
	return err
}

func (dg *DiscordGateway) Stop() error {
	return dg.Session.Close()
}
