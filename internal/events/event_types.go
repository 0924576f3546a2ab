package events

import (
	"time"

	"github.com/focusmate-ai/focus-service/internal/domain"
)

// EventType names a published event.
type EventType string

const (
	EventAIInteractionRecorded EventType = "ai.interaction_recorded"
	EventSessionCompleted      EventType = "session.completed"
)

// Event carries a payload to subscribers.
type Event struct {
	Type       EventType
	OccurredAt time.Time
	Payload    any
}

// AIInteractionPayload accompanies EventAIInteractionRecorded.
type AIInteractionPayload struct {
	Interaction domain.AIInteraction
}

// SessionCompletedPayload accompanies EventSessionCompleted.
type SessionCompletedPayload struct {
	Session domain.FocusSession
}
