package eventsvc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Treasure123-school/THS/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type payload struct {
	Title string `json:"title"`
}

func TestBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(core.NewTestConfig(), nopLogger{})
	defer func() { _ = bus.Close() }()

	received := make(chan payload, 2)
	err := bus.Subscribe(ctx, core.TopicAnnouncementCreated, func(data []byte) error {
		var p payload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		received <- p
		if p.Title == "fail" {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(): %v", err)
	}

	// a failing handler must not block the next event
	for _, title := range []string{"fail", "Welcome"} {
		if err = bus.Publish(ctx, core.TopicAnnouncementCreated, payload{Title: title}); err != nil {
			t.Fatalf("Publish(): %v", err)
		}
	}
	// other topics are not delivered to this subscriber
	if err = bus.Publish(ctx, core.TopicContactSubmitted, payload{Title: "ignored"}); err != nil {
		t.Fatalf("Publish(): %v", err)
	}

	for _, want := range []string{"fail", "Welcome"} {
		select {
		case got := <-received:
			assert.Equal(t, want, got.Title)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
	select {
	case got := <-received:
		t.Errorf("unexpected event %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishUnencodable(t *testing.T) {
	bus := NewBus(core.NewTestConfig(), nopLogger{})
	defer func() { _ = bus.Close() }()

	err := bus.Publish(context.Background(), core.TopicContactSubmitted, make(chan int))
	assert.Error(t, err)
}
