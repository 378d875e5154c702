// Package agent handles chat requests: it parses commands, asks a plan
// generator for a calculation plan, checks it against policy, executes it
// and sends the rendered solution back.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/rahul/finbot/internal/catalog"
	"github.com/rahul/finbot/internal/engine"
	"github.com/rahul/finbot/internal/governance"
	"github.com/rahul/finbot/internal/observability"
	"github.com/rahul/finbot/internal/render"
	"github.com/rahul/finbot/internal/store"
)

// historyLimit is how many past problems the history command lists.
const historyLimit = 5

// Message is an incoming chat message.
type Message struct {
	ChatID string
	Text   string
}

// Replier sends answers back to the chat a message came from.
type Replier interface {
	SendText(ctx context.Context, chatID, text string) error
	SendImage(ctx context.Context, chatID string, png []byte, caption string) error
}

// SolutionStore persists requests and their outcomes.
type SolutionStore interface {
	AddMessage(chatID string, role string, content string) error
	RecordSolution(s store.Solution) (int64, error)
	RecentSolutions(chatID string, limit int) ([]store.Solution, error)
}

type Solver struct {
	Commands *Commands
	Planner  Planner
	Executor *engine.Executor
	Policy   governance.PolicyEngine
	Renderer render.Renderer
	Catalog  *catalog.Catalog
	Store    SolutionStore
	Logger   *observability.Logger
}

func NewSolver(commands *Commands, planner Planner, executor *engine.Executor, renderer render.Renderer, st SolutionStore, logger *observability.Logger) *Solver {
	if executor == nil {
		executor = engine.NewExecutor(nil)
	}
	return &Solver{
		Commands: commands,
		Planner:  planner,
		Executor: executor,
		Renderer: renderer,
		Catalog:  catalog.Default(),
		Store:    st,
		Logger:   logger,
	}
}

// Handle answers one message. Messages that are not commands are ignored.
// Failures are reported to the user and recorded; the returned error only
// reflects replies that could not be delivered.
func (s *Solver) Handle(ctx context.Context, msg Message, r Replier) error {
	cmd := s.Commands.Parse(msg.Text)

	switch cmd.Kind {
	case CommandNone:
		return nil
	case CommandMenu:
		return r.SendText(ctx, msg.ChatID, s.Commands.Menu())
	case CommandHistory:
		return s.history(ctx, msg, r)
	}

	if cmd.Problem == "" {
		return r.SendText(ctx, msg.ChatID, fmt.Sprintf("Por favor, escribe un problema después del comando %s.", cmd.Name))
	}
	return s.solve(ctx, msg, cmd, r)
}

func (s *Solver) solve(ctx context.Context, msg Message, cmd Command, r Replier) error {
	requestID := uuid.NewString()
	ctx = withRequest(ctx, msg.ChatID, requestID)

	log.Printf("[+] Comando: %s | Proveedor: %s | Problema: %q", cmd.Name, cmd.Provider, cmd.Problem)
	s.Logger.LogRequest(msg.ChatID, requestID, cmd.Name, cmd.Provider, cmd.Problem)
	if s.Store != nil {
		if err := s.Store.AddMessage(msg.ChatID, "human", msg.Text); err != nil {
			log.Printf("Warning: failed to store message: %v", err)
		}
	}

	ok := false
	observability.Begin(cmd.Problem)
	defer func() { observability.End(ok) }()

	rec := store.Solution{ChatID: msg.ChatID, Provider: cmd.Provider, Problem: cmd.Problem}

	if err := r.SendText(ctx, msg.ChatID, fmt.Sprintf("Analizando con %s... 🧠✨", cmd.Provider)); err != nil {
		log.Printf("Warning: failed to send acknowledgement to %s: %v", msg.ChatID, err)
	}

	plan, err := s.Planner.Generate(ctx, cmd.Provider, cmd.Problem)
	if err != nil {
		return s.fail(ctx, msg.ChatID, requestID, "plan", rec, err, r)
	}
	if data, err := json.Marshal(plan); err == nil {
		rec.PlanJSON = string(data)
	}
	s.Logger.LogPlan(msg.ChatID, requestID, len(plan.Steps), plan.FinalVariable)

	if s.Policy != nil && !plan.Insufficient() {
		res, err := s.Policy.Evaluate(ctx, governance.Request{ChatID: msg.ChatID, Problem: cmd.Problem, Plan: plan})
		if err != nil {
			return s.fail(ctx, msg.ChatID, requestID, "policy", rec, err, r)
		}
		s.Logger.LogPolicy(msg.ChatID, requestID, string(res.Effect), res.Reason)
		if res.Effect == governance.EffectDeny {
			rec.Status = store.StatusDenied
			rec.Error = res.Reason
			s.record(rec)
			return r.SendText(ctx, msg.ChatID, "🚫 No puedo resolver este problema: "+res.Reason)
		}
	}

	exec, err := s.Executor.Execute(plan)
	if err != nil {
		return s.fail(ctx, msg.ChatID, requestID, "execute", rec, err, r)
	}
	for i, step := range exec.Steps {
		s.Logger.LogStep(msg.ChatID, requestID, i, step.Formula, step.Target, step.Result)
	}

	if err := s.deliver(ctx, msg.ChatID, requestID, exec, r); err != nil {
		return s.fail(ctx, msg.ChatID, requestID, "delivery", rec, err, r)
	}

	log.Printf("[+] Solución enviada a %s", msg.ChatID)
	rec.Status = store.StatusSolved
	s.record(rec)
	ok = true
	return nil
}

// deliver sends the rendered card, or the text version when rendering
// fails.
func (s *Solver) deliver(ctx context.Context, chatID, requestID string, exec *engine.Execution, r Replier) error {
	if s.Renderer != nil {
		observability.SetStatus(observability.RoleRendering, exec.Interpretation)
		png, err := s.Renderer.Render(ctx, exec)
		observability.SetStatus(observability.RoleSolving, exec.Interpretation)
		if err == nil {
			if err := r.SendImage(ctx, chatID, png, ""); err != nil {
				return err
			}
			s.Logger.LogDelivery(chatID, requestID, "image", len(png))
			return nil
		}
		log.Printf("Warning: render failed, sending text: %v", err)
		s.Logger.LogFailure(chatID, requestID, "render", err)
	}

	text := render.Text(exec, s.Catalog)
	if err := r.SendText(ctx, chatID, text); err != nil {
		return err
	}
	s.Logger.LogDelivery(chatID, requestID, "text", len(text))
	return nil
}

func (s *Solver) fail(ctx context.Context, chatID, requestID, stage string, rec store.Solution, err error, r Replier) error {
	log.Printf("Error procesando con %s: %v", rec.Provider, err)
	s.Logger.LogFailure(chatID, requestID, stage, err)

	rec.Status = store.StatusFailed
	if errors.Is(err, engine.ErrInsufficientData) {
		rec.Status = store.StatusInsufficient
	}
	rec.Error = err.Error()
	s.record(rec)

	return r.SendText(ctx, chatID, userMessage(rec.Provider, err))
}

func (s *Solver) record(rec store.Solution) {
	if s.Store == nil {
		return
	}
	if _, err := s.Store.RecordSolution(rec); err != nil {
		log.Printf("Warning: failed to record solution: %v", err)
	}
}

func (s *Solver) history(ctx context.Context, msg Message, r Replier) error {
	if s.Store == nil {
		return r.SendText(ctx, msg.ChatID, "El historial no está disponible.")
	}
	recent, err := s.Store.RecentSolutions(msg.ChatID, historyLimit)
	if err != nil {
		log.Printf("Error reading history for %s: %v", msg.ChatID, err)
		return r.SendText(ctx, msg.ChatID, "No pude leer tu historial.")
	}
	if len(recent) == 0 {
		return r.SendText(ctx, msg.ChatID, "Aún no has enviado problemas.")
	}

	var b strings.Builder
	b.WriteString("📚 Tus últimos problemas:\n")
	for i, sol := range recent {
		fmt.Fprintf(&b, "\n%d. %s [%s, %s]", i+1, sol.Problem, sol.Provider, statusLabel(sol.Status))
	}
	return r.SendText(ctx, msg.ChatID, b.String())
}

func statusLabel(status string) string {
	switch status {
	case store.StatusSolved:
		return "resuelto ✅"
	case store.StatusInsufficient:
		return "faltan datos"
	case store.StatusDenied:
		return "rechazado"
	default:
		return "error"
	}
}

// userMessage turns a failure into the one message the user sees.
func userMessage(provider string, err error) string {
	var insufficient *engine.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		return "🤔 Faltan datos para resolver el problema: " + insufficient.Reason
	case errors.Is(err, ErrMalformedPlan):
		return fmt.Sprintf("Lo siento, el proveedor %s devolvió un plan que no pude interpretar. Intenta de nuevo o usa otro comando.", provider)
	case errors.Is(err, ErrUnknownProvider):
		return fmt.Sprintf("Lo siento, el proveedor %s no está configurado.", provider)
	}
	return fmt.Sprintf("Lo siento, ocurrió un error con el proveedor %s. Detalles: %v", provider, err)
}

type requestKey struct{}

type requestInfo struct {
	chatID    string
	requestID string
}

func withRequest(ctx context.Context, chatID, requestID string) context.Context {
	return context.WithValue(ctx, requestKey{}, requestInfo{chatID: chatID, requestID: requestID})
}

func requestFrom(ctx context.Context) (chatID, requestID string) {
	info, _ := ctx.Value(requestKey{}).(requestInfo)
	return info.chatID, info.requestID
}
