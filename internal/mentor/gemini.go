package mentor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sakif/roadmap-academy/internal/model"
)

const (
	geminiModel = "gemini-2.0-flash"

	// Chat responses are conversational; capping output keeps both cost
	// and latency predictable.
	chatMaxTokens   = 1000
	chatTemperature = 0.7

	// requestTimeout bounds every remote call. The upstream API has no
	// cancellation of its own — without a deadline a hung call would pin
	// the HTTP handler forever.
	requestTimeout = 30 * time.Second
)

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider authenticated with the given API key.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mentor: Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("mentor: creating Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  geminiModel,
	}, nil
}

// Chat sends the conversation plus the learner's context and returns the
// mentor's next utterance.
func (p *GeminiProvider) Chat(ctx context.Context, history []model.ChatMessage, activeModule *ModuleContext, progress *ProgressSummary) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: chatMaxTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: chatSystemInstruction(activeModule, progress)}},
		},
	}
	temp := float32(chatTemperature)
	config.Temperature = &temp

	contents := buildContents(history)

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", &ErrUnavailable{Err: err}
	}

	text := result.Text()
	if text == "" {
		return "", &ErrUnavailable{Err: fmt.Errorf("empty response")}
	}

	return text, nil
}

// ProjectIdea asks for a structured project suggestion. The response schema
// forces valid JSON with title/description/features, so parsing failures are
// provider faults, not prompt-fragility.
func (p *GeminiProvider) ProjectIdea(ctx context.Context, req IdeaRequest) (*model.ProjectIdea, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		`Suggest one unique, creative, and highly practical coding project for a student in the module %q.
Difficulty Level: %s.
Core Topics: %s.
The project should be achievable in 1-2 weeks and demonstrate mastery of the listed topics.`,
		req.ModuleTitle, req.Difficulty, strings.Join(req.Topics, ", "),
	)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":       {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"features": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"title", "description", "features"},
		},
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, &ErrUnavailable{Err: err}
	}

	text := result.Text()
	if text == "" {
		return nil, &ErrUnavailable{Err: fmt.Errorf("empty response")}
	}

	var idea model.ProjectIdea
	if err := json.Unmarshal([]byte(text), &idea); err != nil {
		return nil, &ErrUnavailable{Err: fmt.Errorf("decoding idea: %w", err)}
	}

	return &idea, nil
}

// chatSystemInstruction assembles the mentor persona plus the learner's
// current context for the system prompt.
func chatSystemInstruction(activeModule *ModuleContext, progress *ProgressSummary) string {
	moduleContext := "The student is exploring the general roadmap."
	if activeModule != nil {
		moduleContext = fmt.Sprintf(
			"The student is currently focused on the module: %q.\nModule Description: %s.",
			activeModule.Title, activeModule.Description,
		)
	}

	progressContext := ""
	if progress != nil {
		completed := strings.Join(progress.CompletedModuleTitles, ", ")
		if completed == "" {
			completed = "None yet"
		}
		progressContext = fmt.Sprintf(
			"The student has mastered the following modules: %s.\nTheir overall roadmap completion is %d%%.",
			completed, progress.OverallPercent,
		)
	}

	return fmt.Sprintf(`You are a Senior Front-End Engineer and AI Engineer Mentor.
Your tone is encouraging, professional, and practical.
You are helping a student follow a specific learning roadmap:
- Foundations -> Front-End -> AI Fundamentals -> AI+FE Integration -> Career.

Student Progress Context:
%s
%s

Tailor your advice specifically to their current level and progress.
Answer questions clearly, provide code snippets where helpful (using Tailwind and React),
and suggest next steps based on the roadmap.
Keep responses concise but insightful.
If they ask about a project, guide them through the logic rather than just giving the solution.`,
		moduleContext, progressContext)
}

// buildContents converts chat history to the Gemini content format.
// Gemini's role vocabulary is "user"/"model", not "user"/"assistant".
func buildContents(msgs []model.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == model.RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}
