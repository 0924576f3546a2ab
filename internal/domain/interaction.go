package domain

import "time"

// InteractionSource records whether a reply came from the provider or a
// canned fallback.
type InteractionSource string

const (
	SourceProvider InteractionSource = "openai"
	SourceFallback InteractionSource = "fallback"
)

// AIInteraction is one stored prompt/response exchange.
type AIInteraction struct {
	ID              string
	UserID          string
	Prompt          string
	Response        string
	Context         string
	Source          InteractionSource
	InteractionType string
	CreatedAt       time.Time
}
