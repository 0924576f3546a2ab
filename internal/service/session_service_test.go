package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/events"
	"github.com/focusmate-ai/focus-service/internal/service"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

func TestStartSessionValidates(t *testing.T) {
	svc := service.NewSessionService(&fakeSessionRepo{}, events.NewInMemoryDispatcher(), zap.NewNop())

	_, err := svc.Start(context.Background(), "user-1", "", 25, nil, "")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.Start(context.Background(), "user-1", "pomodoro", 0, nil, "")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
}

func TestStartSessionDefaultsStartTime(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := service.NewSessionService(repo, events.NewInMemoryDispatcher(), zap.NewNop())

	session, err := svc.Start(context.Background(), "user-1", "pomodoro", 25, nil, " deep work ")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.StartedAt.IsZero())
	assert.Equal(t, "deep work", session.Notes)
}

func TestCompleteSessionPublishesEvent(t *testing.T) {
	repo := &fakeSessionRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := service.NewSessionService(repo, dispatcher, zap.NewNop())

	var completed []events.Event
	dispatcher.Subscribe(events.EventSessionCompleted, func(_ context.Context, e events.Event) error {
		completed = append(completed, e)
		return nil
	})

	session, err := svc.Start(context.Background(), "user-1", "pomodoro", 25, nil, "")
	require.NoError(t, err)

	when := time.Now()
	done, err := svc.Complete(context.Background(), "user-1", session.ID, &when, "finished strong")
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	require.Len(t, completed, 1)
	payload, ok := completed[0].Payload.(events.SessionCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, session.ID, payload.Session.ID)
}

func TestCompleteSessionScopedToOwner(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := service.NewSessionService(repo, events.NewInMemoryDispatcher(), zap.NewNop())

	session, err := svc.Start(context.Background(), "user-1", "pomodoro", 25, nil, "")
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "user-2", session.ID, nil, "")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "NOT_FOUND"))
}
