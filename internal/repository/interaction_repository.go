package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/persistence"
)

// InteractionRepository stores AI prompt/response exchanges.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.AIInteraction) error
	ListByUser(ctx context.Context, userID, interactionType string, limit int) ([]domain.AIInteraction, error)
}

type interactionRepository struct {
	db *persistence.Executor
}

// NewInteractionRepository returns an executor-backed implementation.
func NewInteractionRepository(db *persistence.Executor) InteractionRepository {
	return &interactionRepository{db: db}
}

const interactionColumns = "id, user_id, prompt, response, context, source, interaction_type, created_at"

func (r *interactionRepository) Create(ctx context.Context, interaction *domain.AIInteraction) error {
	interaction.ID = uuid.NewString()
	out, err := r.db.Query(ctx, `
        INSERT INTO ai_interactions (id, user_id, prompt, response, context, source, interaction_type, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id, created_at`,
		[]any{interaction.ID, interaction.UserID, interaction.Prompt, interaction.Response,
			interaction.Context, interaction.Source, interaction.InteractionType})
	if err != nil {
		return err
	}
	interaction.CreatedAt = out.First().Time("created_at")
	return nil
}

func (r *interactionRepository) ListByUser(ctx context.Context, userID, interactionType string, limit int) ([]domain.AIInteraction, error) {
	if limit <= 0 {
		limit = 50
	}

	sql := "SELECT " + interactionColumns + " FROM ai_interactions WHERE user_id = $1"
	args := []any{userID}
	if interactionType != "" {
		sql += " AND interaction_type = $2"
		args = append(args, interactionType)
	}
	sql += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	out, err := r.db.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	interactions := make([]domain.AIInteraction, 0, len(out.Rows))
	for _, row := range out.Rows {
		interactions = append(interactions, domain.AIInteraction{
			ID:              row.String("id"),
			UserID:          row.String("user_id"),
			Prompt:          row.String("prompt"),
			Response:        row.String("response"),
			Context:         row.String("context"),
			Source:          domain.InteractionSource(row.String("source")),
			InteractionType: row.String("interaction_type"),
			CreatedAt:       row.Time("created_at"),
		})
	}
	return interactions, nil
}

