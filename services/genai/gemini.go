package genaisvc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/theadruss/Clix-App/core"
)

var (
	ErrMissingKey = errors.New("genai: missing API key")
	ErrNoContent  = errors.New("genai: empty response")
)

var textPrompts = map[core.AssistKind]string{
	core.AssistDescription: `Write a compelling, professional, yet exciting 2-sentence description for a college event about: "%s". Keep it under 50 words.`,
	core.AssistTagline:     `Write a catchy, short tagline for a college event about: "%s". Max 10 words.`,
	core.AssistPosterIdea:  `Describe a minimalist, black and white abstract geometric poster design concept for an event about: "%s".`,
}

const reportPrompt = `Write a professional post-event report for the college event "%s".

Statistics:
- Registrations: %d / %d
- Revenue: %s

Student Feedback:
%s

Structure the report with the following sections (use Markdown):
1. Executive Summary
2. Participation & Engagement Analysis
3. Feedback Highlights
4. Recommendations for Future Events
`

// GeminiAssistant generates content with the Gemini API.
type GeminiAssistant struct {
	models *genai.Models
	conf   core.GenAIConfig
}

var _ core.Assistant = (*GeminiAssistant)(nil)

func NewGeminiAssistant(ctx context.Context, conf core.GenAIConfig) (*GeminiAssistant, error) {
	if conf.APIKey == "" {
		return nil, ErrMissingKey
	}
	cc := &genai.ClientConfig{
		APIKey:  conf.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if conf.BaseURL != "" {
		cc.HTTPOptions.BaseURL = conf.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}
	return &GeminiAssistant{models: client.Models, conf: conf}, nil
}

func (a *GeminiAssistant) generate(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
	if a.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.conf.Timeout)
		defer cancel()
	}
	resp, err := a.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return nil, errors.Wrap(err, "generating content")
	}
	return resp, nil
}

func (a *GeminiAssistant) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := a.generate(ctx, a.conf.TextModel, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func (a *GeminiAssistant) GenerateText(ctx context.Context, topic string, kind core.AssistKind) (string, error) {
	tmpl, ok := textPrompts[kind]
	if !ok {
		return "", errors.Errorf("genai: unknown kind %q", kind)
	}
	return a.generateText(ctx, fmt.Sprintf(tmpl, topic))
}

func (a *GeminiAssistant) GenerateReport(ctx context.Context, in core.ReportInput) (string, error) {
	feedback := "No specific feedback provided."
	if len(in.Feedback) > 0 {
		feedback = strings.Join(in.Feedback, "; ")
	}
	revenue := strconv.FormatFloat(in.Revenue, 'f', -1, 64)
	return a.generateText(ctx, fmt.Sprintf(reportPrompt, in.Title, in.Registered, in.Capacity, revenue, feedback))
}

// GenerateImage returns the first inline image of the response as a data URL.
func (a *GeminiAssistant) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := a.generate(ctx, a.conf.ImageModel, prompt)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return "data:" + part.InlineData.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
	}
	return "", ErrNoContent
}
