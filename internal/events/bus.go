package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TopicSessionCreated = "session.created"
	TopicSessionDeleted = "session.deleted"
)

type SessionEvent struct {
	UserId     string    `json:"user_id"`
	ChatId     string    `json:"chat_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Bus is the in-process pub/sub carrying session lifecycle events. The
// session list poller subscribes to refresh immediately between ticks.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *Bus) Publish(topic string, event SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

func DecodeSessionEvent(msg *message.Message) (SessionEvent, error) {
	var event SessionEvent
	err := json.Unmarshal(msg.Payload, &event)
	return event, err
}
