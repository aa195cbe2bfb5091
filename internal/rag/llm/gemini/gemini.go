package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/rag/llm"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var (
	logger    *applog.Logger
	singleton *llmClient
	once      sync.Once
)

// GetProvider returns the Gemini generation client, built once. Nil when the
// client cannot be created.
func GetProvider(ctx context.Context, modelName, apiKey string, httpClient *http.Client) llm.Provider {
	once.Do(func() {
		logger = applog.NewLogger("GeminiLLM")
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, HTTPClient: httpClient})
		if err != nil {
			logger.Error("could not create gemini client", "error", err)
			return
		}
		singleton = &llmClient{client: c, modelName: modelName}
		logger.Info("gemini client created", "model", modelName)
	})

	if singleton == nil {
		return nil
	}
	return singleton
}

func (c *llmClient) Generate(ctx context.Context, query, contextText string, history []string) (llm.Answer, error) {
	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.SystemInstruction}},
		},
		Temperature: &temperature,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(buildPrompt(query, contextText, history)),
		contentConfig,
	)
	if err != nil {
		return llm.Answer{}, ragerror.New(ragerror.ErrGeneration, ragerror.StageGenerate, err)
	}

	answer := llm.Answer{Text: result.Text()}
	if result.UsageMetadata != nil {
		answer.Tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	if answer.Text == "" {
		return llm.Answer{}, ragerror.New(ragerror.ErrGeneration, ragerror.StageGenerate,
			fmt.Errorf("model returned an empty answer"))
	}
	return answer, nil
}

func buildPrompt(query, contextText string, history []string) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		b.WriteString(strings.Join(history, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Context:\n")
	if contextText == "" {
		b.WriteString("No relevant context found.\n")
	} else {
		b.WriteString(contextText)
	}
	b.WriteString(fmt.Sprintf("\nQuestion: %s\n\nAnswer with citations:", query))
	return b.String()
}
