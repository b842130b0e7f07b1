package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMessage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	created, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	res, err := env.messageService.AddMessage(ctx, userId, "sess-1", &dto.MessageDTO{
		Id: "m1", Content: "Best beaches in Lombok?", Sender: "user", Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MessageCount)
	assert.True(t, res.LastActivity.After(created.LastActivity) || res.LastActivity.Equal(created.LastActivity))

	assert.Len(t, env.publisher.byType(events.TypeMessagesAppended), 1)

	t.Run("unknown session", func(t *testing.T) {
		_, err := env.messageService.AddMessage(ctx, userId, "missing", &dto.MessageDTO{
			Id: "m2", Content: "hi", Sender: "user",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("not the owner", func(t *testing.T) {
		_, err := env.messageService.AddMessage(ctx, uuid.New(), "sess-1", &dto.MessageDTO{
			Id: "m3", Content: "hi", Sender: "user",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("invalid sender", func(t *testing.T) {
		_, err := env.messageService.AddMessage(ctx, userId, "sess-1", &dto.MessageDTO{
			Id: "m4", Content: "hi", Sender: "system",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	})
}

func TestAddMessageMissingTimestampDefaultsToNow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	res, err := env.messageService.AddMessage(ctx, userId, "sess-1", &dto.MessageDTO{
		Id: "m1", Content: "no timestamp", Sender: "user",
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.WithinDuration(t, time.Now(), res.Messages[0].Timestamp, 5*time.Second)
}

func TestTitleDerivation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	t.Run("first user message becomes the title", func(t *testing.T) {
		_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "t-1"})
		require.NoError(t, err)

		res, err := env.messageService.AddMessage(ctx, userId, "t-1", &dto.MessageDTO{
			Id: "m1", Content: "Where should I stay in Ubud?", Sender: "user",
		})
		require.NoError(t, err)
		assert.Equal(t, "Where should I stay in Ubud?", res.Title)
	})

	t.Run("long content is truncated to 50 characters", func(t *testing.T) {
		_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "t-2"})
		require.NoError(t, err)

		long := strings.Repeat("a", 80)
		res, err := env.messageService.AddMessage(ctx, userId, "t-2", &dto.MessageDTO{
			Id: "m1", Content: long, Sender: "user",
		})
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("a", 50)+"...", res.Title)
	})

	t.Run("ai messages never set the title", func(t *testing.T) {
		_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "t-3"})
		require.NoError(t, err)

		res, err := env.messageService.AddMessage(ctx, userId, "t-3", &dto.MessageDTO{
			Id: "m1", Content: "Welcome! How can I help?", Sender: "ai",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultSessionTitle, res.Title)
	})

	t.Run("custom title is never overwritten", func(t *testing.T) {
		_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{
			SessionId: "t-4", Title: "My Itinerary",
		})
		require.NoError(t, err)

		res, err := env.messageService.AddMessage(ctx, userId, "t-4", &dto.MessageDTO{
			Id: "m1", Content: "hello", Sender: "user",
		})
		require.NoError(t, err)
		assert.Equal(t, "My Itinerary", res.Title)
	})

	t.Run("late user messages leave the title alone", func(t *testing.T) {
		_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "t-5"})
		require.NoError(t, err)

		// Seed past the derivation window with ai traffic, resetting the
		// title back each time it would have been derived.
		for _, m := range []dto.MessageDTO{
			{Id: "m1", Content: "greeting", Sender: "ai"},
			{Id: "m2", Content: "reply", Sender: "ai"},
			{Id: "m3", Content: "more", Sender: "ai"},
		} {
			_, err := env.messageService.AddMessage(ctx, userId, "t-5", &m)
			require.NoError(t, err)
		}

		res, err := env.messageService.AddMessage(ctx, userId, "t-5", &dto.MessageDTO{
			Id: "m4", Content: "this came too late", Sender: "user",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultSessionTitle, res.Title)
	})
}

func TestAddBatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	t.Run("appends in order", func(t *testing.T) {
		res, err := env.messageService.AddBatch(ctx, "sess-1", []dto.MessageDTO{
			{Id: "m1", Content: "first", Sender: "user", Timestamp: time.Now()},
			{Id: "m2", Content: "second", Sender: "ai", Timestamp: time.Now()},
		})
		require.NoError(t, err)
		require.Equal(t, 2, res.MessageCount)
		assert.Equal(t, "first", res.Messages[0].Content)
		assert.Equal(t, "second", res.Messages[1].Content)
	})

	t.Run("one bad message rejects the whole batch", func(t *testing.T) {
		_, err := env.messageService.AddBatch(ctx, "sess-1", []dto.MessageDTO{
			{Id: "m3", Content: "ok", Sender: "user"},
			{Id: "m4", Content: "bad", Sender: "robot"},
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

		// Nothing from the failed batch landed.
		stored, err := env.sessions.FindBySessionId(ctx, "sess-1")
		require.NoError(t, err)
		assert.Len(t, stored.Messages, 2)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := env.messageService.AddBatch(ctx, "sess-1", nil)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	})
}

func TestAddBatchForAI(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	res, err := env.messageService.AddBatchForAI(ctx, "sess-1", []dto.AIMessageDTO{
		{Id: "m1", Content: "with timestamp", Sender: "user", Timestamp: dto.FlexTime{Time: stamp}},
		{Id: "m2", Content: "without timestamp", Sender: "ai"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.MessageCount)
	assert.True(t, res.Messages[0].Timestamp.Equal(stamp))
	assert.WithinDuration(t, time.Now(), res.Messages[1].Timestamp, 5*time.Second)
}
