package core

import "context"

// event topics
const (
	TopicAnnouncementCreated = "announcement.created"
	TopicAnnouncementUpdated = "announcement.updated"
	TopicAnnouncementDeleted = "announcement.deleted"
	TopicContactSubmitted    = "contact.submitted"
)

// EventPublisher publishes domain events. Payloads are JSON encoded by the implementation.
// Publishing is best-effort: a failure never rolls back the store mutation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
