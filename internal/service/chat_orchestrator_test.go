package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/constant"
	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/events"
	"ai-webchat-be/internal/pkg/logger"
	"ai-webchat-be/internal/repository/memory"
	"ai-webchat-be/pkg/llm"
	"ai-webchat-be/pkg/llm/llmtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMessageStore is an in-memory IMessageService covering the durable
// side of a turn without a database.
type stubMessageStore struct {
	byChat    map[uuid.UUID][]*entity.Conversation
	appendErr error
}

func newStubMessageStore() *stubMessageStore {
	return &stubMessageStore{byChat: make(map[uuid.UUID][]*entity.Conversation)}
}

func (s *stubMessageStore) AppendMessage(_ context.Context, chatId uuid.UUID, sender, content string) (*entity.Conversation, error) {
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	msg := &entity.Conversation{
		ConvoId:   uuid.New(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.byChat[chatId] = append(s.byChat[chatId], msg)
	return msg, nil
}

func (s *stubMessageStore) GetHistory(_ context.Context, chatId uuid.UUID) ([]*entity.Conversation, error) {
	return s.byChat[chatId], nil
}

func (s *stubMessageStore) RenameSession(_ context.Context, _ string, _ uuid.UUID, _ string) error {
	return nil
}

func (s *stubMessageStore) AuthorizeAccess(_ context.Context, _ string, _ uuid.UUID) error {
	return nil
}

func newTestOrchestrator(store IMessageService, provider llm.Provider) IChatOrchestrator {
	return NewChatOrchestrator(
		memory.NewTranscriptRepository(),
		store,
		provider,
		events.NewBus(),
		logger.NewNopLogger(),
		50*time.Millisecond,
	)
}

func TestSendMessagePersistsBothSides(t *testing.T) {
	store := newStubMessageStore()
	provider := &llmtest.MockProvider{Replies: []string{"hello there"}}
	orch := newTestOrchestrator(store, provider)
	chatId := uuid.New()

	_, err := orch.Connect(context.Background(), chatId)
	require.NoError(t, err)

	res, err := orch.SendMessage(context.Background(), chatId, "hi")
	require.NoError(t, err)

	assert.Equal(t, "hi", res.Sent.Content)
	assert.Equal(t, entity.SenderUser, res.Sent.Sender)
	assert.Equal(t, "hello there", res.Reply.Content)
	assert.Equal(t, entity.SenderGPT, res.Reply.Sender)

	history := store.byChat[chatId]
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "hello there", history[1].Content)

	assert.Equal(t, StateIdle, orch.State(chatId))
}

func TestSendMessageBuildsChronologicalContext(t *testing.T) {
	store := newStubMessageStore()
	chatId := uuid.New()
	store.byChat[chatId] = []*entity.Conversation{
		{ConvoId: uuid.New(), Sender: entity.SenderUser, Content: "first question"},
		{ConvoId: uuid.New(), Sender: entity.SenderGPT, Content: "first answer"},
	}

	provider := &llmtest.MockProvider{Replies: []string{"second answer"}}
	orch := newTestOrchestrator(store, provider)

	_, err := orch.Connect(context.Background(), chatId)
	require.NoError(t, err)
	_, err = orch.SendMessage(context.Background(), chatId, "second question")
	require.NoError(t, err)

	require.Len(t, provider.Requests, 1)
	req := provider.Requests[0]
	require.Len(t, req, 4)

	assert.Equal(t, llm.RoleSystem, req[0].Role)
	assert.Equal(t, constant.SystemInstruction, req[0].Content)
	assert.Equal(t, llm.RoleUser, req[1].Role)
	assert.Equal(t, "first question", req[1].Content)
	assert.Equal(t, llm.RoleAssistant, req[2].Role)
	assert.Equal(t, "first answer", req[2].Content)
	assert.Equal(t, llm.RoleUser, req[3].Role)
	assert.Equal(t, "second question", req[3].Content)
}

func TestCompletionFailureKeepsPersistedUserMessage(t *testing.T) {
	store := newStubMessageStore()
	provider := &llmtest.MockProvider{Err: errors.New("backend unavailable")}
	orch := newTestOrchestrator(store, provider)
	chatId := uuid.New()

	_, err := orch.Connect(context.Background(), chatId)
	require.NoError(t, err)

	_, err = orch.SendMessage(context.Background(), chatId, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrCompletionFailure))

	// The durable copy stays: the message reappears on reload.
	history := store.byChat[chatId]
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)

	// The live transcript no longer shows it.
	assert.Equal(t, StateErrorDisplayed, orch.State(chatId))
	reloaded, err := orch.Connect(context.Background(), chatId)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)

	// A fresh turn after reconnect sees the kept message in context.
	provider.Replies = []string{"recovered"}
	provider.Err = nil
	_, err = orch.SendMessage(context.Background(), chatId, "are you back")
	require.NoError(t, err)
	req := provider.Requests[len(provider.Requests)-1]
	require.Len(t, req, 3)
	assert.Equal(t, "hi", req[1].Content)
	assert.Equal(t, "are you back", req[2].Content)
}

func TestPersistFailureRollsBackTranscript(t *testing.T) {
	store := newStubMessageStore()
	store.appendErr = apperror.Wrapf(apperror.ErrQueryFailure, "insert failed")
	provider := &llmtest.MockProvider{Replies: []string{"unused"}}
	orch := newTestOrchestrator(store, provider)
	chatId := uuid.New()

	_, err := orch.Connect(context.Background(), chatId)
	require.NoError(t, err)

	_, err = orch.SendMessage(context.Background(), chatId, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrQueryFailure))

	// Nothing reached the provider and the transcript is clean.
	assert.Empty(t, provider.Requests)
	assert.Equal(t, StateIdle, orch.State(chatId))

	store.appendErr = nil
	_, err = orch.SendMessage(context.Background(), chatId, "retry")
	require.NoError(t, err)
	req := provider.Requests[0]
	require.Len(t, req, 2)
	assert.Equal(t, "retry", req[1].Content)
}

// blockingMessageStore parks inside AppendMessage until released, holding a
// turn open in UserTurnPending so overlap handling can be exercised.
type blockingMessageStore struct {
	*stubMessageStore
	entered   chan struct{}
	release   chan struct{}
	enterOnce sync.Once
}

func newBlockingMessageStore() *blockingMessageStore {
	return &blockingMessageStore{
		stubMessageStore: newStubMessageStore(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (s *blockingMessageStore) AppendMessage(ctx context.Context, chatId uuid.UUID, sender, content string) (*entity.Conversation, error) {
	if sender == entity.SenderUser {
		s.enterOnce.Do(func() { close(s.entered) })
		<-s.release
	}
	return s.stubMessageStore.AppendMessage(ctx, chatId, sender, content)
}

func TestOverlappingSendRejectedWhileTurnInFlight(t *testing.T) {
	store := newBlockingMessageStore()
	provider := &llmtest.MockProvider{Replies: []string{"reply"}}
	orch := newTestOrchestrator(store, provider)
	chatId := uuid.New()

	_, err := orch.Connect(context.Background(), chatId)
	require.NoError(t, err)

	firstDone := make(chan error, 1)
	go func() {
		_, err := orch.SendMessage(context.Background(), chatId, "first")
		firstDone <- err
	}()

	// Wait until the first turn is parked inside the durable write, i.e.
	// still UserTurnPending.
	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("first turn never reached the store")
	}

	_, err = orch.SendMessage(context.Background(), chatId, "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidationFailure))

	close(store.release)
	require.NoError(t, <-firstDone)

	// Only the first turn made it through; the transcript is intact.
	history := store.byChat[chatId]
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "reply", history[1].Content)

	req := provider.Requests[0]
	require.Len(t, req, 2)
	assert.Equal(t, "first", req[1].Content)
	assert.Equal(t, StateIdle, orch.State(chatId))
}

func TestDismissErrorReturnsToIdle(t *testing.T) {
	store := newStubMessageStore()
	provider := &llmtest.MockProvider{Err: errors.New("down")}
	orch := newTestOrchestrator(store, provider)
	chatId := uuid.New()

	_, err := orch.Connect(context.Background(), chatId)
	require.NoError(t, err)

	_, err = orch.SendMessage(context.Background(), chatId, "hi")
	require.Error(t, err)
	require.Equal(t, StateErrorDisplayed, orch.State(chatId))

	orch.DismissError(chatId)
	assert.Equal(t, StateIdle, orch.State(chatId))

	// Dismissing twice is harmless.
	orch.DismissError(chatId)
	assert.Equal(t, StateIdle, orch.State(chatId))
}

func TestEmptyMessageRejected(t *testing.T) {
	orch := newTestOrchestrator(newStubMessageStore(), &llmtest.MockProvider{})
	_, err := orch.SendMessage(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidationFailure))
}

func TestSessionPollerRefreshesOnEvents(t *testing.T) {
	store := newStubMessageStore()
	bus := events.NewBus()
	orch := NewChatOrchestrator(
		memory.NewTranscriptRepository(),
		store,
		&llmtest.MockProvider{},
		bus,
		logger.NewNopLogger(),
		time.Hour, // ticks must not fire during the test
	)

	refreshed := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch.StartSessionPoller(ctx, "user-a", func() {
		refreshed <- struct{}{}
	})

	// Initial refresh on startup.
	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("no initial refresh")
	}

	// An event for this user triggers an immediate refresh.
	err := bus.Publish(events.TopicSessionCreated, events.SessionEvent{
		UserId:     "user-a",
		ChatId:     uuid.NewString(),
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("no refresh after session.created")
	}

	// Another user's event is ignored.
	err = bus.Publish(events.TopicSessionDeleted, events.SessionEvent{
		UserId:     "user-b",
		ChatId:     uuid.NewString(),
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	select {
	case <-refreshed:
		t.Fatal("refresh fired for another user's event")
	case <-time.After(200 * time.Millisecond):
	}
}
