package service

import (
	"context"
	"fmt"
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

func TestChatSessionCreate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	res, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", res.SessionId)
	assert.Equal(t, entity.DefaultSessionTitle, res.Title)
	assert.Equal(t, 0, res.MessageCount)
	require.NotNil(t, res.UserId)
	assert.Equal(t, userId, *res.UserId)
	assert.False(t, res.LastActivity.IsZero())

	assert.Len(t, env.publisher.byType(events.TypeSessionCreated), 1)
}

func TestChatSessionCreateConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.sessionService.Create(ctx, uuid.New(), &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	// Same id from a different user still collides; session ids are global.
	_, err = env.sessionService.Create(ctx, uuid.New(), &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestChatSessionCreateForAI(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.seedUser(entity.UserRoleUser)

	t.Run("unknown user is rejected", func(t *testing.T) {
		_, _, err := env.sessionService.CreateForAI(ctx, &dto.CreateChatSessionForAIRequest{
			SessionId: "ai-sess",
			UserId:    uuid.New().String(),
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("idempotent create", func(t *testing.T) {
		res, created, err := env.sessionService.CreateForAI(ctx, &dto.CreateChatSessionForAIRequest{
			SessionId: "ai-sess",
			UserId:    user.Id.String(),
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "ai-sess", res.SessionId)

		res2, created2, err := env.sessionService.CreateForAI(ctx, &dto.CreateChatSessionForAIRequest{
			SessionId: "ai-sess",
			UserId:    user.Id.String(),
		})
		require.NoError(t, err)
		assert.False(t, created2)
		assert.Equal(t, res.SessionId, res2.SessionId)
	})

	t.Run("malformed user id", func(t *testing.T) {
		_, _, err := env.sessionService.CreateForAI(ctx, &dto.CreateChatSessionForAIRequest{
			SessionId: "ai-sess-2",
			UserId:    "not-a-uuid",
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	})
}

func TestChatSessionGetResolution(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	_, err := env.sessionService.Create(ctx, owner, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	t.Run("owner reads own session", func(t *testing.T) {
		res, err := env.sessionService.Get(ctx, "sess-1", &owner)
		require.NoError(t, err)
		require.NotNil(t, res.UserId)
		assert.Equal(t, owner, *res.UserId)
	})

	t.Run("stranger cannot see unshared session", func(t *testing.T) {
		_, err := env.sessionService.Get(ctx, "sess-1", &stranger)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("anonymous cannot see unshared session", func(t *testing.T) {
		_, err := env.sessionService.Get(ctx, "sess-1", nil)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("share token resolves for anyone and hides the owner", func(t *testing.T) {
		shared, err := env.shareService.Share(ctx, owner, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, shared.Session.ShareId)

		res, err := env.sessionService.Get(ctx, *shared.Session.ShareId, &stranger)
		require.NoError(t, err)
		assert.Nil(t, res.UserId)

		res, err = env.sessionService.Get(ctx, *shared.Session.ShareId, nil)
		require.NoError(t, err)
		assert.Nil(t, res.UserId)
	})
}

func TestChatSessionList(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	for i := 0; i < 25; i++ {
		sessionId := fmt.Sprintf("sess-%02d", i)
		_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: sessionId})
		require.NoError(t, err)
	}

	page1, err := env.sessionService.List(ctx, userId, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page1.Sessions, 20)
	assert.Equal(t, int64(25), page1.Pagination.Total)
	assert.Equal(t, 2, page1.Pagination.Pages)

	page2, err := env.sessionService.List(ctx, userId, 2, 20)
	require.NoError(t, err)
	assert.Len(t, page2.Sessions, 5)

	// No overlap between pages.
	seen := make(map[string]bool)
	for _, s := range page1.Sessions {
		seen[s.SessionId] = true
	}
	for _, s := range page2.Sessions {
		assert.False(t, seen[s.SessionId])
	}

	// Summaries never carry message bodies.
	for _, s := range page1.Sessions {
		assert.Empty(t, s.Messages)
	}
}

func TestChatSessionListOrderedByActivity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	for i := 0; i < 3; i++ {
		sessionId := fmt.Sprintf("sess-%d", i)
		_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: sessionId})
		require.NoError(t, err)
	}

	// Touch the oldest session; it must float to the top.
	_, err := env.messageService.AddMessage(ctx, userId, "sess-0", &dto.MessageDTO{
		Id: "m1", Content: "hello", Sender: "user",
	})
	require.NoError(t, err)

	res, err := env.sessionService.List(ctx, userId, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.Sessions)
	assert.Equal(t, "sess-0", res.Sessions[0].SessionId)
	assert.Equal(t, 1, res.Sessions[0].MessageCount)
}

func TestChatSessionUpdate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	created, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	t.Run("title only", func(t *testing.T) {
		title := "Trip to Bali"
		res, err := env.sessionService.Update(ctx, userId, "sess-1", &dto.UpdateChatSessionRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Trip to Bali", res.Title)
		assert.False(t, res.IsShared)
		// Renaming is not activity.
		assert.True(t, res.LastActivity.Equal(created.LastActivity))
	})

	t.Run("enabling sharing mints a token", func(t *testing.T) {
		shared := true
		res, err := env.sessionService.Update(ctx, userId, "sess-1", &dto.UpdateChatSessionRequest{IsShared: &shared})
		require.NoError(t, err)
		assert.True(t, res.IsShared)
		require.NotNil(t, res.ShareId)
		assert.Len(t, *res.ShareId, 32)
	})

	t.Run("disabling sharing clears the token", func(t *testing.T) {
		shared := false
		res, err := env.sessionService.Update(ctx, userId, "sess-1", &dto.UpdateChatSessionRequest{IsShared: &shared})
		require.NoError(t, err)
		assert.False(t, res.IsShared)
		assert.Nil(t, res.ShareId)
	})

	t.Run("not the owner", func(t *testing.T) {
		title := "hijack"
		_, err := env.sessionService.Update(ctx, uuid.New(), "sess-1", &dto.UpdateChatSessionRequest{Title: &title})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestChatSessionDelete(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)

	shared, err := env.shareService.Share(ctx, userId, "sess-1")
	require.NoError(t, err)
	shareId := *shared.Session.ShareId

	// Warm the cache, then delete; the cached entry must go with it.
	_, err = env.sessionService.GetShared(ctx, shareId)
	require.NoError(t, err)

	require.NoError(t, env.sessionService.Delete(ctx, userId, "sess-1"))

	_, cached := env.cache.Get(ctx, shareId)
	assert.False(t, cached)

	_, err = env.sessionService.GetShared(ctx, shareId)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	err = env.sessionService.Delete(ctx, userId, "sess-1")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestChatSessionGetSharedCaching(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userId := uuid.New()

	_, err := env.sessionService.Create(ctx, userId, &dto.CreateChatSessionRequest{SessionId: "sess-1"})
	require.NoError(t, err)
	shared, err := env.shareService.Share(ctx, userId, "sess-1")
	require.NoError(t, err)
	shareId := *shared.Session.ShareId

	res, err := env.sessionService.GetShared(ctx, shareId)
	require.NoError(t, err)
	assert.Nil(t, res.UserId)

	// Second read is served from cache.
	_, cached := env.cache.Get(ctx, shareId)
	assert.True(t, cached)
	res2, err := env.sessionService.GetShared(ctx, shareId)
	require.NoError(t, err)
	assert.Equal(t, res.SessionId, res2.SessionId)

	// Appending invalidates so the next read sees the new message.
	_, err = env.messageService.AddMessage(ctx, userId, "sess-1", &dto.MessageDTO{
		Id: "m1", Content: "new message", Sender: "user", Timestamp: time.Now(),
	})
	require.NoError(t, err)

	res3, err := env.sessionService.GetShared(ctx, shareId)
	require.NoError(t, err)
	assert.Equal(t, 1, res3.MessageCount)
}
