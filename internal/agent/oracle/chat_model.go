package oracle

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// ChatModelConfig holds the configuration for oracle chat model creation
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Oracle  *model.OracleModelConfig
}

// NewChatModel creates the Gemini chat model backing the extraction oracle.
// Classification and extraction share one model; temperature is kept low
// because every operation wants deterministic, parseable output.
func NewChatModel(ctx context.Context, config ChatModelConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Oracle.Model,
		Temperature: &config.Oracle.Temperature,
		MaxTokens:   &config.Oracle.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating oracle model")
		return nil, fmt.Errorf("error creating oracle model: %w", err)
	}

	return cm, nil
}
