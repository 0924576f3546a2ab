package dto

import (
	"time"

	"github.com/focusmate-ai/focus-service/internal/ai"
	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/service"
)

// ChatRequest payload for the AI proxy. RequireAuth defaults to true;
// unauthenticated interactions are allowed only when the client opts out.
type ChatRequest struct {
	Messages        []ai.Message `json:"messages"`
	InteractionType string       `json:"interactionType"`
	Context         string       `json:"context"`
	Options         ai.Options   `json:"options"`
	RequireAuth     *bool        `json:"requireAuth"`
}

// ChatResponse mirrors the proxy reply shape.
type ChatResponse struct {
	Response        string             `json:"response"`
	Source          string             `json:"source"`
	InteractionType string             `json:"interactionType"`
	Usage           *service.ChatUsage `json:"usage,omitempty"`
}

// FromChatResult maps the service result to its response shape.
func FromChatResult(r *service.ChatResult) ChatResponse {
	return ChatResponse{
		Response:        r.Response,
		Source:          string(r.Source),
		InteractionType: r.InteractionType,
		Usage:           r.Usage,
	}
}

// InteractionResponse is one stored exchange in the history listing.
type InteractionResponse struct {
	ID              string    `json:"id"`
	Prompt          string    `json:"prompt"`
	Response        string    `json:"response"`
	Context         string    `json:"context,omitempty"`
	Source          string    `json:"source"`
	InteractionType string    `json:"interaction_type"`
	CreatedAt       time.Time `json:"created_at"`
}

// FromInteractions maps a slice of interactions.
func FromInteractions(interactions []domain.AIInteraction) []InteractionResponse {
	out := make([]InteractionResponse, 0, len(interactions))
	for _, it := range interactions {
		out = append(out, InteractionResponse{
			ID:              it.ID,
			Prompt:          it.Prompt,
			Response:        it.Response,
			Context:         it.Context,
			Source:          string(it.Source),
			InteractionType: it.InteractionType,
			CreatedAt:       it.CreatedAt,
		})
	}
	return out
}
