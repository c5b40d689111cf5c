package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/fingertips/internal/agent"
	"github.com/cloo-solutions/fingertips/internal/api/handlers"
	"github.com/cloo-solutions/fingertips/internal/bot"
	"github.com/cloo-solutions/fingertips/internal/config"
	"github.com/cloo-solutions/fingertips/internal/confluence"
	"github.com/cloo-solutions/fingertips/internal/jobs"
	"github.com/cloo-solutions/fingertips/internal/openai"
	"github.com/cloo-solutions/fingertips/internal/server"
	"github.com/cloo-solutions/fingertips/internal/slack"
	"github.com/cloo-solutions/fingertips/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bot server",
		Long:  "Start the fingertips Slack event server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	var wikiClient *confluence.Client
	if cfg.HasConfluence() {
		wikiClient, err = confluence.NewClient(confluence.Config{
			BaseURL:  cfg.ConfluenceURL,
			Username: cfg.ConfluenceUsername,
			APIToken: cfg.ConfluenceAPIToken,
		})
		if err != nil {
			return fmt.Errorf("failed to create Confluence client: %w", err)
		}
		log.Printf("confluence client ready (%s)", cfg.ConfluenceURL)
	}

	var answerer bot.Answerer
	var janitorWorker *jobs.Worker
	if cfg.HasOpenAI() && wikiClient != nil {
		chatClient := openai.NewClientWithConfig(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		assistant := agent.New(chatClient, wikiClient, cfg.OpenAIContextLimit)
		answerer = assistant
		log.Printf("assistant enabled (model %s)", cfg.OpenAIModel)

		janitor := jobs.NewConversationJanitor(assistant, 24*time.Hour)
		janitorWorker = jobs.NewWorker(janitor, 10*time.Minute)
		go janitorWorker.Start(ctx)
		log.Println("conversation janitor started")
	}

	routerCfg := server.RouterConfig{
		APIToken: cfg.APIToken,
	}

	if wikiClient != nil {
		routerCfg.PagesHandler = handlers.NewPagesHandler(wikiClient, cfg.ConfluenceSpaceKey)
	}
	routerCfg.AskHandler = handlers.NewAskHandler(answerer)

	if cfg.HasSlack() {
		slackClient, err := slack.NewClient(cfg.SlackBotToken)
		if err != nil {
			return fmt.Errorf("failed to create Slack client: %w", err)
		}

		identity, err := slackClient.Me(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve bot identity: %w", err)
		}
		log.Printf("connected to Slack as %s (%s)", identity.User, identity.UserID)

		dispatcherCfg := bot.Config{
			Answerer:     answerer,
			DefaultSpace: cfg.ConfluenceSpaceKey,
			SelfMention:  identity.Mention(),
		}
		if wikiClient != nil {
			dispatcherCfg.Lister = wikiClient
		}
		dispatcher := bot.NewDispatcher(dispatcherCfg)

		routerCfg.SlackSigningSecret = cfg.SlackSigningSecret
		routerCfg.EventsHandler = handlers.NewEventsHandler(dispatcher, slackClient, slackClient)
	} else {
		log.Println("slack credentials not set, event endpoint disabled")
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if janitorWorker != nil {
		janitorWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
