package gateway

import (
	"context"
	"strings"

	"github.com/rahul/finbot/internal/agent"
)

// Messenger defines the interface for communication gateways (WhatsApp, Telegram, Discord)
type Messenger interface {
	agent.Replier
	// Start begins the message listening loop and blocks until ctx is done
	Start(ctx context.Context) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Handler answers incoming messages through the gateway that received them.
type Handler interface {
	Handle(ctx context.Context, msg agent.Message, r agent.Replier) error
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// line breaks as cut points.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
