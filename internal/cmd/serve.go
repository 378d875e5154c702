package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rahul/finbot/internal/agent"
	"github.com/rahul/finbot/internal/catalog"
	"github.com/rahul/finbot/internal/engine"
	"github.com/rahul/finbot/internal/gateway"
	"github.com/rahul/finbot/internal/governance"
	"github.com/rahul/finbot/internal/observability"
	"github.com/rahul/finbot/internal/render"
	"github.com/rahul/finbot/internal/store"
	"github.com/rahul/finbot/pkg/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run every enabled gateway",
	Long: `Start the bot: the WhatsApp webhook server, the Telegram poller and the
Discord connection, whichever are enabled in the config file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func buildPolicy(p config.PolicyConfig) (*governance.DefaultPolicyEngine, error) {
	gov := governance.NewDefaultPolicyEngine()
	gov.MaxSteps = p.MaxSteps
	for _, f := range p.DeniedFormulas {
		gov.DenyFormula(f)
	}
	for _, pattern := range p.DeniedPatterns {
		if err := gov.DenyProblem(pattern); err != nil {
			return nil, fmt.Errorf("policy pattern %q: %w", pattern, err)
		}
	}
	return gov, nil
}

func buildGateways(cfg *config.Config, solver *agent.Solver, st *store.HistoryStore) ([]gateway.Messenger, error) {
	var gateways []gateway.Messenger

	if wa, ok := cfg.GetGateway("whatsapp"); ok {
		gateways = append(gateways, gateway.NewWhatsAppGateway(
			wa.AccountSID, wa.Token, wa.From, cfg.App.PublicURL, cfg.App.ListenAddr,
			wa.ValidateSigning, solver, st,
		))
	}
	if tg, ok := cfg.GetGateway("telegram"); ok {
		g, err := gateway.NewTelegramGateway(tg.Token, solver)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		gateways = append(gateways, g)
	}
	if dc, ok := cfg.GetGateway("discord"); ok {
		g, err := gateway.NewDiscordGateway(dc.Token, solver)
		if err != nil {
			return nil, fmt.Errorf("discord: %w", err)
		}
		gateways = append(gateways, g)
	}

	if len(gateways) == 0 {
		return nil, fmt.Errorf("no gateway is enabled in the config")
	}
	return gateways, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	observability.PrintBanner(cfg.App.Name)
	log.SetOutput(observability.NewTermWriter())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, err := store.NewHistoryStore(cfg.Memory.Path)
	if err != nil {
		return err
	}
	defer history.Close()

	models, err := buildModels(ctx, cfg)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("no enabled provider found in config")
	}
	for command, provider := range cfg.Commands {
		if _, ok := models[provider]; !ok {
			log.Printf("Warning: command %s uses provider %s, which is not enabled", command, provider)
		}
	}

	gov, err := buildPolicy(cfg.Policy)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	logger := observability.NewLogger()
	prompts := agent.NewPromptManager(cfg.App.PromptsDir, cat)
	planner := agent.NewLLMPlanner(models, prompts, logger)

	renderer := render.NewChromeRenderer(cat, cfg.Render.Width, time.Duration(cfg.Render.TimeoutSeconds)*time.Second).
		WithExecPath(cfg.Render.ChromePath)
	renderer.Headful = cfg.Render.Headful
	defer renderer.Close()

	solver := agent.NewSolver(agent.NewCommands(cfg.Commands), planner, engine.NewExecutor(nil), renderer, history, logger)
	solver.Policy = gov
	solver.Catalog = cat

	gateways, err := buildGateways(cfg, solver, history)
	if err != nil {
		return err
	}

	scheduler := agent.NewScheduler(history, time.Duration(cfg.Media.TTLMinutes)*time.Minute, logger)
	go scheduler.Start(ctx)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintStatus()
			}
		}
	}()

	var wg sync.WaitGroup
	for _, g := range gateways {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Start(ctx); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				stop() // one dead gateway takes the process down
			}
		}()
	}

	// every gateway stops itself once ctx is done
	<-ctx.Done()
	wg.Wait()

	log.Println("\033[95m[ EXIT ] finbot stopped.\033[0m")
	return nil
}
