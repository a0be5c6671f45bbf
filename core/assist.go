package core

import "context"

type AssistKind string

// text generation kinds
const (
	AssistDescription AssistKind = "description"
	AssistTagline     AssistKind = "tagline"
	AssistPosterIdea  AssistKind = "poster_idea"
)

var AssistKinds = []string{string(AssistDescription), string(AssistTagline), string(AssistPosterIdea)}

// ReportInput is what an event report is generated from.
type ReportInput struct {
	Title      string
	Registered int
	Capacity   int
	Revenue    float64
	Feedback   []string
}

// Assistant generates advisory content. Callers never block their workflow on it:
// an error (or an empty image) must be handled by falling back.
type Assistant interface {
	GenerateText(ctx context.Context, topic string, kind AssistKind) (string, error)
	GenerateReport(ctx context.Context, in ReportInput) (string, error)
	// GenerateImage returns a data URL ("data:<mime>;base64,<data>").
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
