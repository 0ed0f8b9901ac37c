package counterparty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIClient identifies the counterparty of a transaction with an external
// model. This abstraction allows the resolver to be tested without API calls.
type AIClient interface {
	IdentifyCounterparty(ctx context.Context, tx models.Transaction) (string, error)
}

// unknownAnswer is the reply the model is asked to give when unsure.
const unknownAnswer = "UNKNOWN"

// AIStrategy resolves the client with an AIClient.
type AIStrategy struct {
	client AIClient
	logger logging.Logger
}

// NewAIStrategy creates a new AIStrategy instance.
func NewAIStrategy(client AIClient, logger logging.Logger) *AIStrategy {
	return &AIStrategy{client: client, logger: logging.OrDefault(logger)}
}

// Name returns the name of this strategy.
func (s *AIStrategy) Name() string { return "AI" }

// Resolve asks the AI client for the counterparty. Empty and UNKNOWN
// answers are "not found".
func (s *AIStrategy) Resolve(ctx context.Context, tx models.Transaction) (string, bool, error) {
	if s.client == nil || strings.TrimSpace(tx.Narration) == "" {
		return "", false, nil
	}
	name, err := s.client.IdentifyCounterparty(ctx, tx)
	if err != nil {
		return "", false, fmt.Errorf("AI counterparty lookup failed: %w", err)
	}
	name = strings.Trim(strings.TrimSpace(name), `"'.`)
	if name == "" || strings.EqualFold(name, unknownAnswer) {
		s.logger.Debug("AI returned no counterparty", logging.F(logging.FieldTransactionID, tx.ID))
		return "", false, nil
	}
	return name, true, nil
}

// GeminiClient implements AIClient with the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient creates a Gemini-backed client for the named model.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logging.OrDefault(logger),
	}, nil
}

// IdentifyCounterparty asks the model for the person or company on the
// other side of the transaction.
func (c *GeminiClient) IdentifyCounterparty(ctx context.Context, tx models.Transaction) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := buildPrompt(tx)
	c.logger.Debug("Requesting counterparty from Gemini", logging.F(logging.FieldTransactionID, tx.ID))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	return parseAnswer(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func buildPrompt(tx models.Transaction) string {
	direction := "received from"
	if tx.IsDebit() {
		direction = "paid to"
	}
	return fmt.Sprintf(`The following bank statement line records money %s a counterparty.
Narration: %s
Reference: %s
Amount: %s

Reply with the name of the counterparty (person or company) only.
If it cannot be determined, reply %s.`,
		direction, tx.Narration, tx.ChequeRef, tx.Amount().StringFixed(2), unknownAnswer)
}

// parseAnswer keeps the first non-empty line of the reply, without a
// leading "Counterparty:" label.
func parseAnswer(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 && strings.EqualFold(strings.TrimSpace(line[:idx]), "counterparty") {
			line = strings.TrimSpace(line[idx+1:])
		}
		return line
	}
	return ""
}
