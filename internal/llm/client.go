package llm

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"carscout/internal/intent"
	"carscout/internal/offers"
	"carscout/internal/profile"
)

// #endregion

// #region interfaces

// Classifier is the structured-output model collaborator:
// classify(input, schema) → structured value. Implementations must degrade,
// never panic; the caller falls back to the heuristic cascade on error.
type Classifier interface {
	Classify(ctx context.Context, text string, history []Message) (intent.Classification, error)
}

// Responder generates the user-facing reply for a completed turn.
type Responder interface {
	Respond(ctx context.Context, in RespondInput) (string, error)
}

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// RespondInput carries everything the response model may use.
type RespondInput struct {
	Text        string
	Intent      intent.Classification
	State       profile.Data
	Offers      []offers.Offer
	History     []Message
	BriefMode   bool
	Clarify     bool
	DetailLevel string
}

// #endregion interfaces

// #region chat-api

// chatAPI is the slice of go-openai the client needs; *openai.Client
// satisfies it, and tests inject a canned implementation.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// #endregion chat-api

// #region client

const requestTimeout = 10 * time.Second

// Client talks to an OpenAI-compatible chat model for classification and
// response generation.
type Client struct {
	api   chatAPI
	model string
}

// NewClient creates a client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{api: openai.NewClient(apiKey), model: model}
}

// NewClientWithAPI creates a Client with an injected chat implementation.
// Used for testing without a network connection.
func NewClientWithAPI(api chatAPI, model string) *Client {
	return &Client{api: api, model: model}
}

// #endregion client

// #region classify

const classifySystem = `Du bist der Intent-Klassifikator eines Autokauf-Assistenten.
Antworte NUR mit einem JSON-Objekt:
{"label": "<LABEL>", "confidence": <0..1>, "frustration_flag": <bool>}
Erlaubte Labels: AFFIRMATION, FRUSTRATION, PREFERENCE_CHANGE, CONSTRAINT_UPDATE,
NEEDS_CLARIFICATION, KNOWLEDGE_SIGNAL, MODE_REQUEST, SMALL_TALK,
META_COMMUNICATION, INFORMATION, FEEDBACK_NEGATIVE, FEEDBACK_POSITIVE,
GREETING, COMPARISON_REQUEST, OFF_TOPIC.`

// Classify asks the model for an intent label. The preference deltas stay
// with the heuristic extractor; only label, confidence, and the frustration
// flag come from the model.
func (c *Client) Classify(ctx context.Context, text string, history []Message) (intent.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: classifySystem + "\n\nTranscript:\n" + transcript(history)},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		MaxTokens:   120,
		Messages:    messages,
	})
	if err != nil {
		return intent.Classification{}, fmt.Errorf("classify completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return intent.Classification{}, fmt.Errorf("classify completion: no choices")
	}

	var out struct {
		Label       string  `json:"label"`
		Confidence  float64 `json:"confidence"`
		Frustration bool    `json:"frustration_flag"`
	}
	raw := extractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return intent.Classification{}, fmt.Errorf("classify parse: %w", err)
	}

	label := intent.Label(strings.ToUpper(strings.TrimSpace(out.Label)))
	if !intent.KnownLabel(label) {
		return intent.Classification{}, fmt.Errorf("classify parse: unknown label %q", out.Label)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		out.Confidence = 0.5
	}

	return intent.Classification{
		Label:       label,
		Confidence:  out.Confidence,
		Frustration: out.Frustration,
	}, nil
}

// #endregion classify

// #region respond

const respondSystem = `Du bist ein freundlicher Autokauf-Berater.
Antworte auf Deutsch, konkret und ohne Floskeln.`

// Respond generates the reply text for the turn.
func (c *Client) Respond(ctx context.Context, in RespondInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var b strings.Builder
	b.WriteString(respondSystem)
	if in.BriefMode {
		b.WriteString("\nHalte die Antwort unter drei Sätzen.")
	}
	if in.Clarify {
		b.WriteString("\nStelle genau eine Rückfrage, um die Suche einzugrenzen.")
	}
	fmt.Fprintf(&b, "\n\nIntent: %s\nProfil: %s", in.Intent.Label, describeState(in.State))
	if len(in.Offers) > 0 {
		b.WriteString("\nGefundene Angebote:\n")
		for i, o := range in.Offers {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s, %.0f €)\n", o.Title, o.Category, o.PriceEUR)
		}
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: b.String()},
	}
	for _, m := range in.History {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: in.Text,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.6,
		MaxTokens:   400,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("respond completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("respond completion: no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// #endregion respond

// #region helpers

// extractJSON scans for the outermost brace pair so a model answer wrapped
// in prose or code fences still parses.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func transcript(history []Message) string {
	var b strings.Builder
	for _, m := range history {
		role := strings.ToUpper(m.Role)
		if role == "" {
			role = "USER"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
	}
	return b.String()
}

func describeState(d profile.Data) string {
	parts := []string{
		"budget=" + d.Car.BudgetLevel,
		"nutzung=" + d.Car.UsagePattern,
		"größe=" + d.Car.SizePreference,
	}
	if len(d.Product.PreferredCategories) > 0 {
		parts = append(parts, "kategorien="+strings.Join(d.Product.PreferredCategories, ","))
	}
	if len(d.Car.DealBreakers) > 0 {
		parts = append(parts, "dealbreaker="+strings.Join(d.Car.DealBreakers, ","))
	}
	return strings.Join(parts, " ")
}

// #endregion helpers
