// Package ai is the store assistant: a Gemini chat whose tools read and edit the
// shop's data through the repository.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"go-pos-vault/internal/repository"
)

// DefaultModel is the Gemini model the assistant talks to.
const DefaultModel = "gemini-2.0-flash-001"

// maxToolRounds bounds how many times the model may chain tool calls for one question.
const maxToolRounds = 5

// ErrNoAPIKey is returned when the assistant is used without GEMINI_API_KEY.
var ErrNoAPIKey = errors.New("ai: GEMINI_API_KEY is not set")

// Agent answers questions about the shop.
type Agent struct {
	apiKey string
	model  string
	repo   *repository.Repository
	logger *slog.Logger
	clock  func() time.Time
}

// NewAgent returns an assistant over repo.
func NewAgent(apiKey string, repo *repository.Repository, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{apiKey: apiKey, model: DefaultModel, repo: repo, logger: logger, clock: time.Now}
}

// Enabled reports whether an API key is configured.
func (a *Agent) Enabled() bool { return a != nil && a.apiKey != "" }

// Ask sends message to the model, running any tool calls it makes, and returns
// its final text reply. actor labels the audit entries of edits the tools make.
func (a *Agent) Ask(ctx context.Context, message, actor string) (string, error) {
	if !a.Enabled() {
		return "", ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", fmt.Errorf("ai: new client: %w", err)
	}
	defer client.Close()

	tools := NewToolbox(a.repo, actor)
	model := client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: tools.Declarations()}}
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt(a.clock(), a.repo.Settings().StoreName)))

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("ai: send: %w", err)
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return replyText(resp), nil
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			payload, err := tools.Call(call.Name, call.Args)
			if err != nil {
				return "", fmt.Errorf("ai: tool %s: %w", call.Name, err)
			}
			a.logger.Info("assistant tool call", "tool", call.Name, "actor", actor)
			parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: payload})
		}

		if resp, err = session.SendMessage(ctx, parts...); err != nil {
			return "", fmt.Errorf("ai: send tool results: %w", err)
		}
	}
	return replyText(resp), nil
}

func systemPrompt(now time.Time, storeName string) string {
	return fmt.Sprintf(`Today is %s. You are the assistant of %s, a small shop using a point-of-sale terminal.

RULES:
1. UPDATE: If a user asks to update a product by NAME, do NOT ask for the ID. Call 'check_inventory' to find it, then 'update_product_price'.
2. READ: For the price, category or details of a product, call 'check_inventory' and read the result.
3. SALES: For revenue or order counts in a period, use 'get_sales_report'. For all-time totals use 'get_dashboard'. For best sellers use 'get_top_selling'.
4. If a tool returns status "error", explain the message to the user.`, now.Format(dateLayout), storeName)
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return "I completed the action."
}
