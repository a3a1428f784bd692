package integration

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/config"
	"ai-webchat-be/internal/dto"
	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/events"
	"ai-webchat-be/internal/pkg/logger"
	"ai-webchat-be/internal/repository/memory"
	"ai-webchat-be/internal/repository/unitofwork"
	"ai-webchat-be/internal/service"
	"ai-webchat-be/pkg/database"
	"ai-webchat-be/pkg/llm/llmtest"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	cfg := config.Load()
	db, err := database.NewGormDB(cfg.Database)
	require.NoError(t, err, "Failed to connect to DB")

	require.NoError(t, database.InitSchema(db))
	return db
}

func newUserID(t *testing.T, db *gorm.DB, suffix string) string {
	t.Helper()

	userId := service.GenerateUserID("Test "+suffix, suffix+"@integration.test", "password123")
	uowFactory := unitofwork.NewRepositoryFactory(db)
	uow := uowFactory.NewUnitOfWork(context.Background())

	hash := "not-a-real-hash"
	err := uow.UserRepository().Create(context.Background(), &entity.User{
		UserId:       userId,
		Name:         "Test " + suffix,
		Email:        suffix + "@integration.test",
		PasswordHash: &hash,
		Verified:     true,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Exec("DELETE FROM user_chat_names WHERE user_id = ?", userId)
		db.Exec("DELETE FROM users WHERE user_id = ?", userId)
	})
	return userId
}

func newChatStack(db *gorm.DB, replies ...string) (service.IChatSessionService, service.IMessageService, service.IChatOrchestrator, *llmtest.MockProvider) {
	uowFactory := unitofwork.NewRepositoryFactory(db)
	bus := events.NewBus()
	nop := logger.NewNopLogger()

	provider := &llmtest.MockProvider{Replies: replies}
	sessions := service.NewChatSessionService(uowFactory, bus, nop)
	messages := service.NewMessageService(uowFactory, nop)
	orch := service.NewChatOrchestrator(memory.NewTranscriptRepository(), messages, provider, bus, nop, time.Minute)
	return sessions, messages, orch, provider
}

func TestSessionLifecycle(t *testing.T) {
	db := setupDB(t)
	userId := newUserID(t, db, "lifecycle")
	sessions, _, _, _ := newChatStack(db)
	ctx := context.Background()

	// Create shows up in the list with the default name.
	created, err := sessions.CreateSession(ctx, userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	list, err := sessions.ListSessions(ctx, userId)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ChatId, list[0].ChatId)
	assert.Equal(t, entity.DefaultChatName, list[0].ChatName)
	assert.Empty(t, list[0].LastMessage)

	// Delete empties the list.
	require.NoError(t, sessions.DeleteSession(ctx, userId, created.ChatId))
	list, err = sessions.ListSessions(ctx, userId)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Deleting again is a quiet no-op.
	require.NoError(t, sessions.DeleteSession(ctx, userId, created.ChatId))
}

func TestCreateSessionWithInitialMessage(t *testing.T) {
	db := setupDB(t)
	userId := newUserID(t, db, "initialmsg")
	sessions, messages, _, _ := newChatStack(db)
	ctx := context.Background()

	first := "hello, new chat"
	created, err := sessions.CreateSession(ctx, userId, &dto.CreateSessionRequest{InitialMessage: &first})
	require.NoError(t, err)
	defer sessions.DeleteSession(ctx, userId, created.ChatId)

	history, err := messages.GetHistory(ctx, created.ChatId)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first, history[0].Content)
	assert.Equal(t, entity.SenderUser, history[0].Sender)

	list, err := sessions.ListSessions(ctx, userId)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first, list[0].LastMessage)
}

func TestHistoryOrderAndRecency(t *testing.T) {
	db := setupDB(t)
	userId := newUserID(t, db, "ordering")
	sessions, messages, _, _ := newChatStack(db)
	ctx := context.Background()

	older, err := sessions.CreateSession(ctx, userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	defer sessions.DeleteSession(ctx, userId, older.ChatId)

	newer, err := sessions.CreateSession(ctx, userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	defer sessions.DeleteSession(ctx, userId, newer.ChatId)

	contents := []string{"one", "two", "three"}
	for _, c := range contents {
		_, err := messages.AppendMessage(ctx, older.ChatId, entity.SenderUser, c)
		require.NoError(t, err)
	}

	// History comes back in insertion order.
	history, err := messages.GetHistory(ctx, older.ChatId)
	require.NoError(t, err)
	require.Len(t, history, len(contents))
	for i, c := range contents {
		assert.Equal(t, c, history[i].Content)
	}

	// Appending bumped the older session above the newer one.
	list, err := sessions.ListSessions(ctx, userId)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ChatId, list[0].ChatId)
	assert.Equal(t, "three", list[0].LastMessage)

	// Renaming must not reorder.
	require.NoError(t, messages.RenameSession(ctx, userId, newer.ChatId, "renamed"))
	list, err = sessions.ListSessions(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, older.ChatId, list[0].ChatId)
	assert.Equal(t, "renamed", list[1].ChatName)
}

func TestFullRoundTrip(t *testing.T) {
	db := setupDB(t)
	userId := newUserID(t, db, "roundtrip")
	sessions, messages, orch, _ := newChatStack(db, "hello")
	ctx := context.Background()

	created, err := sessions.CreateSession(ctx, userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	defer sessions.DeleteSession(ctx, userId, created.ChatId)

	_, err = orch.Connect(ctx, created.ChatId)
	require.NoError(t, err)

	res, err := orch.SendMessage(ctx, created.ChatId, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Sent.Content)
	assert.Equal(t, "hello", res.Reply.Content)

	history, err := messages.GetHistory(ctx, created.ChatId)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.SenderUser, history[0].Sender)
	assert.Equal(t, entity.SenderGPT, history[1].Sender)
}

func TestSessionAccessRequiresOwnership(t *testing.T) {
	db := setupDB(t)
	owner := newUserID(t, db, "owner")
	intruder := newUserID(t, db, "intruder")
	sessions, messages, _, _ := newChatStack(db)
	ctx := context.Background()

	created, err := sessions.CreateSession(ctx, owner, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	defer sessions.DeleteSession(ctx, owner, created.ChatId)

	// The owner passes, everyone else is turned away.
	require.NoError(t, messages.AuthorizeAccess(ctx, owner, created.ChatId))

	err = messages.AuthorizeAccess(ctx, intruder, created.ChatId)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))

	err = messages.AuthorizeAccess(ctx, "", created.ChatId)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))

	// An unknown chatId reads the same as a foreign one.
	err = messages.AuthorizeAccess(ctx, intruder, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))

	// Renaming through another user's identity is refused too.
	err = messages.RenameSession(ctx, intruder, created.ChatId, "hijacked")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
}

func TestConcurrentSessionCreation(t *testing.T) {
	db := setupDB(t)
	userId := newUserID(t, db, "concurrent")
	sessions, _, _, _ := newChatStack(db)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make([]uuid.UUID, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := sessions.CreateSession(ctx, userId, &dto.CreateSessionRequest{})
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = res.ChatId
		}(i)
	}
	wg.Wait()

	seen := make(map[uuid.UUID]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[results[i]], "duplicate chatId %s", results[i])
		seen[results[i]] = true
		defer sessions.DeleteSession(ctx, userId, results[i])
	}

	list, err := sessions.ListSessions(ctx, userId)
	require.NoError(t, err)
	assert.Len(t, list, n)
}
