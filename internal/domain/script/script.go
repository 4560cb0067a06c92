package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"voicecast-server-go/internal/domain/batch"
	"voicecast-server-go/internal/domain/conversation"
	"voicecast-server-go/internal/domain/eventbus"
	"voicecast-server-go/internal/platform/config"
	"voicecast-server-go/internal/platform/errors"
	"voicecast-server-go/internal/platform/logging"
)

const (
	summarySystemPrompt = `You are a helpful assistant that summarizes group conversations.
Your task is to:
1. Analyze the conversation and identify key themes, updates, and important information
2. Create a concise summary (max 300 words)
3. Generate a natural dialogue script where each participant shares their most important update

The dialogue should be conversational and engaging, like a group call where everyone shares their news.
Keep each person's lines short and natural (1-2 sentences max).`

	scriptSystemPrompt = `You are a helpful assistant that creates structured dialogue scripts from summaries. Always respond with valid JSON.`

	// Only the most recent messages go into the prompt to stay inside the
	// model's context window.
	maxPromptMessages = 100
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// rawLine matches the JSON shape the model is asked to produce.
type rawLine struct {
	Username string `json:"username"`
	Line     string `json:"line"`
}

// Result is a generated script with the summary it was derived from.
type Result struct {
	Summary string             `json:"summary"`
	Lines   []batch.ScriptLine `json:"lines"`
}

// Generator turns an imported conversation into a short spoken-dialogue
// script through the LLM.
type Generator struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
	logger      *logging.Logger
}

func NewGenerator(cfg config.LLMConfig, logger *logging.Logger) (*Generator, error) {
	if cfg.APIKey == "" || cfg.APIKey == "your_api_key" {
		return nil, errors.New(errors.KindScript, "script.new", "OpenAI API key required (set OPENAI_API_KEY)")
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.ModelName
	if model == "" {
		model = openai.GPT4
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

// Generate summarizes the conversation and extracts a structured dialogue
// script. When the model's JSON cannot be parsed, a minimal one-line-per-
// participant script is produced instead of failing the session.
func (g *Generator) Generate(ctx context.Context, conv conversation.Conversation) (*Result, error) {
	participants := conv.Participants
	if len(participants) == 0 {
		participants = conversation.ParticipantsOf(conv.Messages, conv.MainUser)
	}
	if len(participants) == 0 {
		return nil, errors.New(errors.KindScript, "script.generate", "conversation has no participants")
	}

	summary, err := g.summarize(ctx, conv, participants)
	if err != nil {
		return nil, err
	}

	lines, err := g.extractLines(ctx, summary, participants)
	if err != nil {
		g.logger.WarnTag("SCRIPT", "structured extraction failed, using fallback script: %v", err)
		lines = fallbackLines(participants)
	}

	g.logger.InfoTag("SCRIPT", "generated %d script lines for %d participants", len(lines), len(participants))
	eventbus.Publish(eventbus.EventScriptGenerated, eventbus.BatchEventData{Lines: len(lines)})

	return &Result{Summary: summary, Lines: lines}, nil
}

func (g *Generator) summarize(ctx context.Context, conv conversation.Conversation, participants []string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildContext(conv, participants)},
		},
	})
	if err != nil {
		return "", errors.Wrap(errors.KindScript, "script.summarize", "summary request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.KindScript, "script.summarize", "model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *Generator) extractLines(ctx context.Context, summary string, participants []string) ([]batch.ScriptLine, error) {
	prompt := fmt.Sprintf(`Based on this summary, create a structured dialogue script where each participant speaks:

Summary: %s

Participants: %s

Format the response as a JSON array of objects with this structure:
[
    {"username": "participant_name", "line": "what they say", "line_number": 1},
    ...
]

Make sure each participant gets at least one line, and the dialogue flows naturally.`,
		summary, strings.Join(participants, ", "))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   500,
		Temperature: 0.5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scriptSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindScript, "script.extract", "script request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(errors.KindScript, "script.extract", "model returned no choices")
	}

	return parseScriptJSON(resp.Choices[0].Message.Content)
}

// parseScriptJSON decodes the model output, tolerating markdown code fences,
// and renumbers lines sequentially.
func parseScriptJSON(content string) ([]batch.ScriptLine, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw []rawLine
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, errors.Wrap(errors.KindScript, "script.parse", "model returned invalid JSON", err)
	}

	lines := make([]batch.ScriptLine, 0, len(raw))
	for _, r := range raw {
		if r.Username == "" || r.Line == "" {
			continue
		}
		lines = append(lines, batch.ScriptLine{
			Speaker:    r.Username,
			Text:       r.Line,
			LineNumber: len(lines) + 1,
		})
	}
	if len(lines) == 0 {
		return nil, errors.New(errors.KindScript, "script.parse", "model returned no usable lines")
	}
	return lines, nil
}

func fallbackLines(participants []string) []batch.ScriptLine {
	lines := make([]batch.ScriptLine, len(participants))
	for i, p := range participants {
		lines[i] = batch.ScriptLine{
			Speaker:    p,
			Text:       "Hey everyone! Just wanted to share an update from our group chat.",
			LineNumber: i + 1,
		}
	}
	return lines
}

func buildContext(conv conversation.Conversation, participants []string) string {
	messages := conv.Messages
	if len(messages) > maxPromptMessages {
		messages = messages[len(messages)-maxPromptMessages:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Participants: %s\n\nRecent messages:\n", strings.Join(participants, ", "))
	for _, msg := range messages {
		if msg.IsMedia {
			continue
		}
		if msg.Timestamp.IsZero() {
			fmt.Fprintf(&b, "%s: %s\n", msg.Sender, msg.Content)
		} else {
			fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.Format("2006-01-02 15:04"), msg.Sender, msg.Content)
		}
	}
	b.WriteString("\nPlease create a concise summary of this group conversation and generate a short dialogue script where each participant shares their key updates.")
	return b.String()
}
