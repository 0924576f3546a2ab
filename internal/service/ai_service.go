package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/ai"
	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/events"
	"github.com/focusmate-ai/focus-service/internal/ratelimit"
	"github.com/focusmate-ai/focus-service/internal/repository"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// ChatUsage reports rough token accounting for provider-sourced replies.
type ChatUsage struct {
	Tokens int    `json:"tokens"`
	Model  string `json:"model"`
}

// ChatResult is the outcome of one proxied chat exchange.
type ChatResult struct {
	Response        string
	Source          domain.InteractionSource
	InteractionType string
	Usage           *ChatUsage
}

// AIService proxies chat completions with rate limiting, canned
// fallbacks and interaction history.
type AIService struct {
	provider     *ai.Client
	interactions repository.InteractionRepository
	limiter      ratelimit.Limiter
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// NewAIService builds the service.
func NewAIService(provider *ai.Client, interactions repository.InteractionRepository, limiter ratelimit.Limiter, dispatcher events.Dispatcher, logger *zap.Logger) *AIService {
	return &AIService{
		provider:     provider,
		interactions: interactions,
		limiter:      limiter,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// Canned replies used when the provider is unavailable, keyed by
// interaction type.
var fallbackResponses = map[string][]string{
	"chat": {
		"I'm here to help you stay focused! What's your current challenge?",
		"Let's break this down step by step. What's the first action you can take?",
		"You've got this! Sometimes the best way forward is to start small.",
		"Focus on progress, not perfection. What small win can you achieve right now?",
	},
	"focus_suggestions": {
		"Break your task into smaller 15-minute chunks",
		"Remove distractions from your workspace",
		"Set a specific goal for this session",
		"Use the Pomodoro technique for better focus",
		"Try the two-minute rule for quick tasks",
	},
	"session_summary": {
		"Great work completing this session! You showed excellent focus and determination.",
		"Every focused session contributes to building stronger productivity habits.",
		"Excellent progress! Keep building these positive work patterns.",
	},
	"journal_analysis": {
		"Your reflection shows great self-awareness. Keep up the journaling habit!",
		"I notice your dedication to reflection and growth. This self-awareness will help you optimize your productivity.",
		"Your journal entries demonstrate consistent effort toward your goals. Keep reflecting on your progress!",
	},
}

func fallbackResponse(interactionType string) string {
	responses, ok := fallbackResponses[interactionType]
	if !ok {
		responses = fallbackResponses["chat"]
	}
	return responses[rand.Intn(len(responses))]
}

// Chat proxies the conversation to the provider, falling back to a
// canned reply on any provider failure. userID may be empty for
// unauthenticated interactions; those are rate-limit exempt and not
// recorded.
func (s *AIService) Chat(ctx context.Context, userID string, messages []ai.Message, interactionType, contextText string, opts ai.Options) (*ChatResult, error) {
	if len(messages) == 0 {
		return nil, util.NewValidationError("messages must be a non-empty array", nil)
	}
	if interactionType == "" {
		interactionType = "chat"
	}

	if userID != "" {
		allowed, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			s.logger.Warn("rate limit check failed", zap.Error(err))
		} else if !allowed {
			return nil, util.NewRateLimited("Rate limit exceeded. Please try again later.")
		}
	}

	result := &ChatResult{InteractionType: interactionType}
	completion, err := s.provider.Complete(ctx, messages, opts)
	if err != nil {
		s.logger.Warn("provider call failed, using fallback",
			zap.String("interaction_type", interactionType),
			zap.Error(err))
		result.Response = fallbackResponse(interactionType)
		result.Source = domain.SourceFallback
	} else {
		result.Response = completion.Content
		result.Source = domain.SourceProvider
		result.Usage = &ChatUsage{
			Tokens: (len(completion.Content) + 3) / 4,
			Model:  completion.Model,
		}
	}

	if userID != "" {
		interaction := domain.AIInteraction{
			UserID:          userID,
			Prompt:          messages[len(messages)-1].Content,
			Response:        result.Response,
			Context:         contextText,
			Source:          result.Source,
			InteractionType: interactionType,
		}
		// Persistence happens in the subscribed recorder; a lost history
		// row never fails the chat itself.
		if err := s.dispatcher.Publish(ctx, events.Event{
			Type:       events.EventAIInteractionRecorded,
			OccurredAt: time.Now().UTC(),
			Payload:    events.AIInteractionPayload{Interaction: interaction},
		}); err != nil {
			s.logger.Error("failed to record AI interaction", zap.Error(err))
		}
	}

	return result, nil
}

// RegisterInteractionRecorder subscribes the handler that persists chat
// exchanges published on the dispatcher.
func RegisterInteractionRecorder(dispatcher events.Dispatcher, interactions repository.InteractionRepository, logger *zap.Logger) {
	dispatcher.Subscribe(events.EventAIInteractionRecorded, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.AIInteractionPayload)
		if !ok {
			logger.Warn("unexpected interaction event payload")
			return nil
		}
		interaction := payload.Interaction
		if err := interactions.Create(ctx, &interaction); err != nil {
			logger.Error("failed to store AI interaction", zap.Error(err))
			return err
		}
		return nil
	})
}

// History lists the user's stored interactions, optionally filtered by type.
func (s *AIService) History(ctx context.Context, userID, interactionType string, limit int) ([]domain.AIInteraction, error) {
	return s.interactions.ListByUser(ctx, userID, strings.TrimSpace(interactionType), limit)
}
