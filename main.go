package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/graph/conversations"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/oracle"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/repo"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/tools"
	"github.com/yogeshdhome/Invoice-Assistant/internal/core"
	"github.com/yogeshdhome/Invoice-Assistant/internal/server"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
	pkgredis "github.com/yogeshdhome/Invoice-Assistant/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Oracle       model.OracleModelConfig
	Conversation model.ConversationConfig

	// Collaborators
	SAP        model.SAPConfig
	ServiceNow model.ServiceNowConfig

	// HTTP
	Server model.ServerConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise redis client")
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("invalid CONVERSATION_TTL")
	}

	conversationRepo := repo.NewRedisConversationRepository(rdb, ttl)
	stateRepo := repo.NewRedisStateRepository(rdb, ttl)
	analyticsRepo := repo.NewRedisAnalyticsRepository(rdb)

	mm := conversations.NewMessagesManager(conversationRepo, cfg.Conversation)

	cm, err := oracle.NewChatModel(ctx, oracle.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Oracle:  &cfg.Oracle,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create chat model")
	}
	extractionOracle := oracle.NewAdapter(cm, cfg.Oracle.Model, mm)

	var invoices model.InvoiceStatusClient
	if cfg.SAP.APIURL != "" {
		invoices = tools.NewSAPClient(cfg.SAP)
	} else {
		logx.Warn().Msg("SAP_API_URL not set, using mock invoice status client")
		invoices = tools.NewMockSAPClient()
	}

	var tickets model.TicketClient
	if cfg.ServiceNow.InstanceURL != "" {
		tickets = tools.NewServiceNowClient(cfg.ServiceNow)
	} else {
		logx.Warn().Msg("SERVICENOW_INSTANCE_URL not set, using mock ticketing client")
		tickets = tools.NewMockServiceNowClient()
	}

	engine, err := graph.BuildInvoiceGraph(graph.Deps{
		Oracle:       extractionOracle,
		Invoices:     invoices,
		Tickets:      tickets,
		MaxTurnSteps: cfg.Conversation.MaxTurnSteps,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build dialogue graph")
	}

	assistant := agent.NewAssistant(engine, mm, stateRepo, analyticsRepo)
	srv := server.New(cfg.Server, assistant, analyticsRepo)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-stop:
		logx.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
