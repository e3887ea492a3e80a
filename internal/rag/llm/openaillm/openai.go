package openaillm

import (
	"context"
	"errors"
	"sync"

	"github.com/apatwari/docchat/internal/customHttpClient"
	"github.com/apatwari/docchat/internal/rag/llm"
	"github.com/apatwari/docchat/pkg/logkit"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client    *openai.Client
	modelName string
}

var logger *logkit.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logkit.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		c := openai.NewClient(
			option.WithAPIKey(apikey),
			option.WithHTTPClient(customHttpClient.Pooled()),
		)
		openaiClient = &llmClient{client: &c, modelName: modelName}
		logger.Info("OpenAI client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return &llmClient{client: openaiClient.client, modelName: openaiClient.modelName}
}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	log := logger.With("traceId", ctx.Value("traceId"))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		log.Error("OpenAI completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty openai response")
	}
	return resp.Choices[0].Message.Content, nil
}
