package service

import (
	"context"
	"sync"
	"time"

	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/constant"
	"ai-webchat-be/internal/dto"
	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/events"
	"ai-webchat-be/internal/pkg/logger"
	"ai-webchat-be/internal/repository/memory"
	"ai-webchat-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// SessionState is the per-session conversation state. A session is Idle
// between turns, briefly UserTurnPending while the user message is being
// recorded, AwaitingCompletion while the assistant reply is in flight, and
// ErrorDisplayed while a failed turn's banner is visible.
type SessionState int

const (
	StateIdle SessionState = iota
	StateUserTurnPending
	StateAwaitingCompletion
	StateErrorDisplayed
)

func (s SessionState) String() string {
	switch s {
	case StateUserTurnPending:
		return "user_turn_pending"
	case StateAwaitingCompletion:
		return "awaiting_completion"
	case StateErrorDisplayed:
		return "error_displayed"
	default:
		return "idle"
	}
}

type IChatOrchestrator interface {
	Connect(ctx context.Context, chatId uuid.UUID) ([]*entity.Conversation, error)
	Disconnect(chatId uuid.UUID)
	SendMessage(ctx context.Context, chatId uuid.UUID, content string) (*dto.SendMessageResponse, error)
	DismissError(chatId uuid.UUID)
	State(chatId uuid.UUID) SessionState
	StartSessionPoller(ctx context.Context, userId string, refresh func())
}

type sessionRuntime struct {
	state      SessionState
	errorTimer *time.Timer
}

type chatOrchestrator struct {
	transcripts    *memory.TranscriptRepository
	messageService IMessageService
	provider       llm.Provider
	bus            *events.Bus
	logger         logger.ILogger
	pollInterval   time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionRuntime
}

func NewChatOrchestrator(
	transcripts *memory.TranscriptRepository,
	messageService IMessageService,
	provider llm.Provider,
	bus *events.Bus,
	sysLogger logger.ILogger,
	pollInterval time.Duration,
) IChatOrchestrator {
	return &chatOrchestrator{
		transcripts:    transcripts,
		messageService: messageService,
		provider:       provider,
		bus:            bus,
		logger:         sysLogger,
		pollInterval:   pollInterval,
		sessions:       make(map[uuid.UUID]*sessionRuntime),
	}
}

func (o *chatOrchestrator) runtime(chatId uuid.UUID) *sessionRuntime {
	rt, ok := o.sessions[chatId]
	if !ok {
		rt = &sessionRuntime{state: StateIdle}
		o.sessions[chatId] = rt
	}
	return rt
}

// Connect loads the persisted history into the in-memory transcript and
// resets the session to Idle. Reconnecting replaces any stale transcript.
func (o *chatOrchestrator) Connect(ctx context.Context, chatId uuid.UUID) ([]*entity.Conversation, error) {
	history, err := o.messageService.GetHistory(ctx, chatId)
	if err != nil {
		return nil, err
	}
	o.transcripts.Save(chatId.String(), history)

	o.mu.Lock()
	defer o.mu.Unlock()
	rt := o.runtime(chatId)
	rt.stopErrorTimer()
	rt.state = StateIdle
	return history, nil
}

func (o *chatOrchestrator) Disconnect(chatId uuid.UUID) {
	o.transcripts.Delete(chatId.String())
	o.mu.Lock()
	defer o.mu.Unlock()
	if rt, ok := o.sessions[chatId]; ok {
		rt.stopErrorTimer()
		delete(o.sessions, chatId)
	}
}

func (o *chatOrchestrator) State(chatId uuid.UUID) SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rt, ok := o.sessions[chatId]; ok {
		return rt.state
	}
	return StateIdle
}

// SendMessage runs one full user turn. The user message is written to the
// transcript optimistically and persisted durably before the completion
// request goes out. A completion failure removes only the optimistic copy;
// the persisted row stays, so the message survives a reload.
func (o *chatOrchestrator) SendMessage(ctx context.Context, chatId uuid.UUID, content string) (*dto.SendMessageResponse, error) {
	if content == "" {
		return nil, apperror.Wrapf(apperror.ErrValidationFailure, "message content is empty")
	}

	// One turn at a time per session. The transcript read-modify-write below
	// is only safe because no second turn can enter while this one holds the
	// non-Idle state.
	o.mu.Lock()
	rt := o.runtime(chatId)
	if rt.state == StateUserTurnPending || rt.state == StateAwaitingCompletion {
		o.mu.Unlock()
		return nil, apperror.Wrapf(apperror.ErrValidationFailure, "a turn is already in flight for this session")
	}
	rt.stopErrorTimer()
	rt.state = StateUserTurnPending
	o.mu.Unlock()

	userMessage := &entity.Conversation{
		ConvoId:   uuid.New(),
		Sender:    entity.SenderUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	transcript, _ := o.transcripts.Get(chatId.String())
	transcript = append(transcript, userMessage)
	o.transcripts.Save(chatId.String(), transcript)

	persisted, err := o.messageService.AppendMessage(ctx, chatId, entity.SenderUser, content)
	if err != nil {
		o.rollbackOptimistic(chatId, userMessage.ConvoId)
		o.setState(chatId, StateIdle)
		return nil, err
	}
	// The durable row is the authoritative copy from here on.
	transcript[len(transcript)-1] = persisted
	o.transcripts.Save(chatId.String(), transcript)

	o.setState(chatId, StateAwaitingCompletion)

	reply, err := o.provider.Chat(ctx, o.buildContext(transcript))
	if err != nil {
		o.rollbackOptimistic(chatId, persisted.ConvoId)
		o.enterErrorDisplayed(chatId)
		o.logger.Error("chat", "completion request failed", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		return nil, apperror.Wrap(apperror.ErrCompletionFailure, err)
	}

	replyMessage, err := o.messageService.AppendMessage(ctx, chatId, entity.SenderGPT, reply)
	if err != nil {
		o.rollbackOptimistic(chatId, persisted.ConvoId)
		o.enterErrorDisplayed(chatId)
		return nil, err
	}

	transcript, _ = o.transcripts.Get(chatId.String())
	transcript = append(transcript, replyMessage)
	o.transcripts.Save(chatId.String(), transcript)
	o.setState(chatId, StateIdle)

	return &dto.SendMessageResponse{
		Sent: &dto.MessageResponse{
			ConvoId:   persisted.ConvoId,
			Content:   persisted.Content,
			Sender:    persisted.Sender,
			Timestamp: persisted.Timestamp,
		},
		Reply: &dto.MessageResponse{
			ConvoId:   replyMessage.ConvoId,
			Content:   replyMessage.Content,
			Sender:    replyMessage.Sender,
			Timestamp: replyMessage.Timestamp,
		},
	}, nil
}

func (o *chatOrchestrator) DismissError(chatId uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rt, ok := o.sessions[chatId]
	if !ok || rt.state != StateErrorDisplayed {
		return
	}
	rt.stopErrorTimer()
	rt.state = StateIdle
}

// buildContext assembles the completion request: the fixed system
// instruction, then the transcript in chronological order with stored
// senders mapped onto provider roles.
func (o *chatOrchestrator) buildContext(transcript []*entity.Conversation) []llm.Message {
	messages := make([]llm.Message, 0, len(transcript)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: constant.SystemInstruction})
	for _, msg := range transcript {
		role := llm.RoleUser
		if msg.Sender == entity.SenderGPT {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}
	return messages
}

func (o *chatOrchestrator) rollbackOptimistic(chatId uuid.UUID, convoId uuid.UUID) {
	transcript, ok := o.transcripts.Get(chatId.String())
	if !ok {
		return
	}
	trimmed := transcript[:0]
	for _, msg := range transcript {
		if msg.ConvoId != convoId {
			trimmed = append(trimmed, msg)
		}
	}
	o.transcripts.Save(chatId.String(), trimmed)
}

func (o *chatOrchestrator) setState(chatId uuid.UUID, state SessionState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runtime(chatId).state = state
}

func (o *chatOrchestrator) enterErrorDisplayed(chatId uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rt := o.runtime(chatId)
	rt.stopErrorTimer()
	rt.state = StateErrorDisplayed
	rt.errorTimer = time.AfterFunc(constant.ErrorBannerTimeoutSeconds*time.Second, func() {
		o.DismissError(chatId)
	})
}

func (rt *sessionRuntime) stopErrorTimer() {
	if rt.errorTimer != nil {
		rt.errorTimer.Stop()
		rt.errorTimer = nil
	}
}

// StartSessionPoller refreshes the caller's session list on a fixed
// interval, immediately when a session is created or deleted, and once on
// startup. The poller lives exactly as long as the context.
func (o *chatOrchestrator) StartSessionPoller(ctx context.Context, userId string, refresh func()) {
	created, err := o.bus.Subscribe(ctx, events.TopicSessionCreated)
	if err != nil {
		o.logger.Error("chat", "failed to subscribe to session.created", map[string]interface{}{"error": err.Error()})
		created = nil
	}
	deleted, err := o.bus.Subscribe(ctx, events.TopicSessionDeleted)
	if err != nil {
		o.logger.Error("chat", "failed to subscribe to session.deleted", map[string]interface{}{"error": err.Error()})
		deleted = nil
	}

	go func() {
		ticker := time.NewTicker(o.pollInterval)
		defer ticker.Stop()

		refresh()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh()
			case msg, ok := <-created:
				if !ok {
					created = nil
					continue
				}
				o.handleSessionEvent(msg, userId, refresh)
			case msg, ok := <-deleted:
				if !ok {
					deleted = nil
					continue
				}
				o.handleSessionEvent(msg, userId, refresh)
			}
		}
	}()
}

func (o *chatOrchestrator) handleSessionEvent(msg *message.Message, userId string, refresh func()) {
	defer msg.Ack()
	event, err := events.DecodeSessionEvent(msg)
	if err != nil {
		o.logger.Warn("chat", "undecodable session event", map[string]interface{}{"error": err.Error()})
		return
	}
	if event.UserId == userId {
		refresh()
	}
}
