package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rahul/finbot/internal/agent"
	"github.com/rahul/finbot/internal/store"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// whatsappBodyLimit is the longest body Twilio accepts for one message.
const whatsappBodyLimit = 1600

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// MediaStore keeps rendered images reachable by URL until Twilio fetches them.
type MediaStore interface {
	SaveMedia(chatID, contentType string, data []byte) (string, error)
	GetMedia(id string) (*store.Media, error)
}

// WhatsAppGateway receives messages through a Twilio webhook and replies
// through the Twilio Messages API. Images are served from /media so Twilio
// can download them.
type WhatsAppGateway struct {
	Sender    messageCreator
	From      string
	PublicURL string
	Addr      string
	Handler   Handler
	Media     MediaStore

	validator *twilioclient.RequestValidator
	ctx       context.Context
	server    *http.Server
	wg        sync.WaitGroup
}

// NewWhatsAppGateway builds a gateway around a Twilio REST client. When
// validate is set, webhook calls must carry a valid X-Twilio-Signature.
func NewWhatsAppGateway(accountSID, authToken, from, publicURL, addr string, validate bool, handler Handler, media MediaStore) *WhatsAppGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	g := &WhatsAppGateway{
		Sender:    client.Api,
		From:      from,
		PublicURL: strings.TrimRight(publicURL, "/"),
		Addr:      addr,
		Handler:   handler,
		Media:     media,
	}
	if validate {
		v := twilioclient.NewRequestValidator(authToken)
		g.validator = &v
	}
	return g
}

// Routes returns the HTTP handler serving the webhook, media and health
// endpoints.
func (g *WhatsAppGateway) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /whatsapp", g.handleWebhook)
	mux.HandleFunc("GET /media/{id}", g.handleMedia)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

func (g *WhatsAppGateway) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if g.validator != nil {
		params := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
		url := g.PublicURL + r.URL.RequestURI()
		if !g.validator.Validate(url, params, r.Header.Get("X-Twilio-Signature")) {
			log.Printf("Rejected webhook call with invalid signature from %s", r.RemoteAddr)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
	}

	msg := agent.Message{
		ChatID: r.PostForm.Get("From"),
		Text:   r.PostForm.Get("Body"),
	}
	log.Printf("[+] Mensaje recibido de %s: %q", msg.ChatID, msg.Text)

	// Twilio gives up on slow webhooks, so answer first.
	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(emptyTwiML))

	if msg.ChatID == "" || g.Handler == nil {
		return
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := g.Handler.Handle(g.context(), msg, g); err != nil {
			log.Printf("Error answering %s: %v", msg.ChatID, err)
		}
	}()
}

func (g *WhatsAppGateway) handleMedia(w http.ResponseWriter, r *http.Request) {
	m, err := g.Media.GetMedia(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("Error reading media: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", m.ContentType)
	w.Write(m.Data)
}

func (g *WhatsAppGateway) context() context.Context {
	if g.ctx != nil {
		return g.ctx
	}
	return context.Background()
}

func (g *WhatsAppGateway) Start(ctx context.Context) error {
	g.ctx = ctx
	g.server = &http.Server{
		Addr:              g.Addr,
		Handler:           g.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		g.Stop()
	}()

	log.Printf("WhatsApp webhook listening on %s (POST /whatsapp)", g.Addr)
	err := g.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *WhatsAppGateway) Stop() error {
	if g.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := g.server.Shutdown(ctx)
	g.wg.Wait()
	return err
}

func (g *WhatsAppGateway) SendText(ctx context.Context, chatID, text string) error {
	for _, chunk := range splitMessage(text, whatsappBodyLimit) {
		params := &openapi.CreateMessageParams{}
		params.SetTo(chatID)
		params.SetFrom(g.From)
		params.SetBody(chunk)
		if _, err := g.Sender.CreateMessage(params); err != nil {
			return fmt.Errorf("twilio send text: %w", err)
		}
	}
	return nil
}

func (g *WhatsAppGateway) SendImage(ctx context.Context, chatID string, png []byte, caption string) error {
	if g.PublicURL == "" {
		return fmt.Errorf("twilio send image: public_url is not configured")
	}
	id, err := g.Media.SaveMedia(chatID, "image/png", png)
	if err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(chatID)
	params.SetFrom(g.From)
	params.SetMediaUrl([]string{g.PublicURL + "/media/" + id})
	if caption != "" {
		params.SetBody(caption)
	}
	if _, err := g.Sender.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send image: %w", err)
	}
	return nil
}
