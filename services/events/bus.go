// Package eventsvc carries domain events between the services of a single API process.
package eventsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
)

// HandlerFunc consumes the JSON payload of one event.
type HandlerFunc func(payload []byte) error

type Bus struct {
	pubSub *gochannel.GoChannel
	logger core.Logger
}

var _ core.EventPublisher = (*Bus)(nil)

func NewBus(conf *core.Config, logger core.Logger) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(conf.Debug && !conf.TestMode, false),
		),
		logger: logger,
	}
}

func (b *Bus) Publish(_ context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encoding %s event", topic)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return errors.Wrapf(b.pubSub.Publish(topic, msg), "publishing %s event", topic)
}

// Subscribe runs handler for every event published on topic until ctx is done or the bus is closed.
// Handler errors are logged; the event is acked either way so it is never redelivered.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler HandlerFunc) error {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return errors.Wrapf(err, "subscribing to %s", topic)
	}
	go func() {
		for msg := range messages {
			if err := handler(msg.Payload); err != nil {
				b.logger.Error(fmt.Sprintf("handling %s event %s: %v", topic, msg.UUID, err), err)
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
